package usecase

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

type ImageUsecase struct {
	store    ImageStore
	ids      IDGenerator
	maxBytes int64
}

func NewImageUsecase(store ImageStore, ids IDGenerator, maxBytes int64) *ImageUsecase {
	return &ImageUsecase{store: store, ids: ids, maxBytes: maxBytes}
}

type UploadImageInput struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// jpg/pngだけ。保存名はuuidにする
func (u *ImageUsecase) Upload(ctx context.Context, in UploadImageInput) (StoredImage, error) {
	if in.Body == nil {
		return StoredImage{}, NewHTTPError(http.StatusBadRequest, "image file required")
	}
	if in.Size > u.maxBytes {
		return StoredImage{}, NewHTTPError(http.StatusRequestEntityTooLarge, "image too large")
	}

	ext := strings.ToLower(filepath.Ext(in.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return StoredImage{}, NewHTTPError(http.StatusBadRequest, "only jpg and png are allowed")
	}

	//拡張子ではなく中身で判定する
	br := bufio.NewReaderSize(in.Body, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return StoredImage{}, NewHTTPError(http.StatusBadRequest, "could not read image")
	}
	storedExt, ok := allowedImageTypes[http.DetectContentType(head)]
	if !ok {
		return StoredImage{}, NewHTTPError(http.StatusBadRequest, "only jpg and png are allowed")
	}

	img, err := u.store.Save(ctx, u.ids.NewID()+storedExt, io.LimitReader(br, u.maxBytes))
	if err != nil {
		return StoredImage{}, NewHTTPError(http.StatusInternalServerError, "could not save image")
	}
	return img, nil
}

func (u *ImageUsecase) List(ctx context.Context) ([]StoredImage, error) {
	list, err := u.store.List(ctx)
	if err != nil {
		return []StoredImage{}, NewHTTPError(http.StatusInternalServerError, "could not list images")
	}
	return list, nil
}
