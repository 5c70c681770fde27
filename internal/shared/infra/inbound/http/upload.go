package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	sharedDomain "github.com/davicafu/rosterlab/internal/shared/domain"
	"github.com/davicafu/rosterlab/pkg/utils"
)

// PhotoField es el campo multipart de la foto.
const PhotoField = "photo"

// FormPhoto abre la foto opcional del formulario. Sin foto devuelve nil.
// ok=false indica que ya se respondió con 400. closeFn nunca es nil si ok.
func FormPhoto(c *gin.Context) (photo *sharedDomain.Upload, closeFn func(), ok bool) {
	header, err := c.FormFile(PhotoField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, true
		}
		utils.SendBadRequest(c, "invalid photo upload")
		return nil, nil, false
	}

	f, err := header.Open()
	if err != nil {
		utils.SendBadRequest(c, "invalid photo upload")
		return nil, nil, false
	}
	return &sharedDomain.Upload{Filename: header.Filename, Content: f}, func() { f.Close() }, true
}
