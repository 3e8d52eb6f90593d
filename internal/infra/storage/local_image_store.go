package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"storefront/internal/usecase"
)

// UPLOAD_DIR配下に保存し、/uploads/<name> で配信する
type LocalImageStore struct {
	dir       string
	urlPrefix string
}

func NewLocalImageStore(dir string, urlPrefix string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalImageStore{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

func (s *LocalImageStore) Dir() string {
	return s.dir
}

func (s *LocalImageStore) Save(ctx context.Context, name string, r io.Reader) (usecase.StoredImage, error) {
	//ディレクトリをまたぐ名前は受け付けない
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return usecase.StoredImage{}, fmt.Errorf("invalid image name %q", name)
	}

	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return usecase.StoredImage{}, fmt.Errorf("create image: %w", err)
	}

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path)
		if copyErr != nil {
			return usecase.StoredImage{}, fmt.Errorf("write image: %w", copyErr)
		}
		return usecase.StoredImage{}, fmt.Errorf("close image: %w", closeErr)
	}

	info, err := os.Stat(path)
	if err != nil {
		return usecase.StoredImage{}, fmt.Errorf("stat image: %w", err)
	}
	return usecase.StoredImage{Name: name, URL: s.urlPrefix + "/" + name, Size: n, At: info.ModTime()}, nil
}

// 新しい順
func (s *LocalImageStore) List(ctx context.Context) ([]usecase.StoredImage, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}

	out := make([]usecase.StoredImage, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, usecase.StoredImage{
			Name: e.Name(),
			URL:  s.urlPrefix + "/" + e.Name(),
			Size: info.Size(),
			At:   info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	return out, nil
}
