package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	sharedDomain "github.com/davicafu/rosterlab/internal/shared/domain"
)

// DefaultPhoto nunca se borra del disco.
const DefaultPhoto = sharedDomain.DefaultPhoto

var (
	ErrPhotoNotFound = errors.New("photo not found")
	ErrInvalidName   = sharedDomain.ErrInvalidPhoto
)

var allowedExt = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}

// PhotoStore guarda las fotos subidas bajo un directorio base.
type PhotoStore struct {
	fs  afero.Fs
	log *zap.Logger
}

var _ sharedDomain.PhotoStorage = (*PhotoStore)(nil)

// NewPhotoStore limita fs al directorio dir (afero.BasePathFs) y lo crea si no existe.
func NewPhotoStore(fs afero.Fs, dir string, log *zap.Logger) (*PhotoStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &PhotoStore{fs: afero.NewBasePathFs(fs, dir), log: log}, nil
}

// Save copia r a un fichero nuevo "<uuid><ext>" y devuelve su nombre.
// La extensión se toma del nombre original.
func (s *PhotoStore) Save(_ context.Context, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExt[ext] {
		return "", fmt.Errorf("%w: unsupported extension %q", ErrInvalidName, ext)
	}

	name := uuid.NewString() + ext
	f, err := s.fs.OpenFile(name, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create photo: %w", err)
	}

	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = s.fs.Remove(name)
		return "", fmt.Errorf("write photo: %w", err)
	}
	return name, nil
}

// Delete borra la foto salvo que sea la de por defecto o esté vacía.
// Una foto que ya no existe no es un error.
func (s *PhotoStore) Delete(_ context.Context, name string) error {
	if IsDefault(name) {
		return nil
	}
	if err := validName(name); err != nil {
		return err
	}
	err := s.fs.Remove(name)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete photo %s: %w", name, err)
	}
	return nil
}

// Open abre la foto para servirla.
func (s *PhotoStore) Open(_ context.Context, name string) (afero.File, os.FileInfo, error) {
	if err := validName(name); err != nil {
		return nil, nil, err
	}
	f, err := s.fs.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, ErrPhotoNotFound
		}
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, info, nil
}

// IsDefault indica si name es la foto compartida (o ninguna). El dato de
// ejemplo "DefaultPic.png" también cuenta como compartida.
func IsDefault(name string) bool {
	return name == "" || strings.EqualFold(name, DefaultPhoto) || strings.EqualFold(name, "DefaultPic.png")
}

func validName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return ErrInvalidName
	}
	return nil
}
