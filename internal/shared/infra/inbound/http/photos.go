package http

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/davicafu/rosterlab/internal/shared/infra/platform/storage"
	"github.com/davicafu/rosterlab/pkg/utils"
)

// PhotoOpener abre una foto guardada por nombre.
type PhotoOpener interface {
	Open(ctx context.Context, name string) (afero.File, os.FileInfo, error)
}

// ServePhotos endpoint GET /photos/:name
func ServePhotos(photos PhotoOpener, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, info, err := photos.Open(c.Request.Context(), c.Param("name"))
		if err != nil {
			if errors.Is(err, storage.ErrPhotoNotFound) || errors.Is(err, storage.ErrInvalidName) {
				utils.SendNotFound(c, "photo not found")
				return
			}
			log.Error("Failed to open photo", zap.String("name", c.Param("name")), zap.Error(err))
			utils.SendInternalServerError(c, "internal error")
			return
		}
		defer f.Close()

		c.Header("Cache-Control", "public, max-age=86400")
		http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
	}
}
