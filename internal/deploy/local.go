package deploy

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Local copies the output into Root/<site>.
type Local struct {
	Root string
	now  func() time.Time
}

// NewLocal creates a local adapter.
func NewLocal(root string) *Local {
	return &Local{Root: root, now: time.Now}
}

func (l *Local) Name() string { return "local" }

func (l *Local) Deploy(ctx context.Context, dir string, req Request) (*Result, error) {
	t, err := walkTree(dir)
	if err != nil {
		return nil, err
	}
	target := filepath.Join(l.Root, siteName(dir, req))
	if err := os.RemoveAll(target); err != nil {
		return nil, fmt.Errorf("clearing target: %w", err)
	}
	for _, f := range t.files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := copyFile(f.path, filepath.Join(target, filepath.FromSlash(f.rel))); err != nil {
			return nil, err
		}
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}
	return &Result{
		Success: true,
		URL:     "file://" + filepath.ToSlash(abs) + "/index.html",
		Message: fmt.Sprintf("copied %d files to %s", len(t.files), target),
		Summary: t.summary(l.Name(), l.now()),
	}, nil
}

func copyFile(src, dst string) (err error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(out, in)
	return err
}
