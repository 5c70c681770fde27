package domain

import (
	"context"
	"errors"
	"io"
)

// DefaultPhoto es la foto que se asigna a una ficha sin imagen propia.
const DefaultPhoto = "default.png"

// ErrInvalidPhoto indica un nombre o extensión de foto no admitidos.
var ErrInvalidPhoto = errors.New("invalid photo name")

// Upload es un fichero recibido junto con el formulario de una ficha.
type Upload struct {
	Filename string
	Content  io.Reader
}

// PhotoStorage guarda y borra las fotos de las fichas.
type PhotoStorage interface {
	// Save devuelve el nombre con el que se guardó el fichero.
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	// Delete ignora la foto por defecto y los ficheros que ya no existen.
	Delete(ctx context.Context, name string) error
}
