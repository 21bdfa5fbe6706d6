package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campushub/classroom-api/internal/dto"
	appErrors "github.com/campushub/classroom-api/pkg/errors"
	"github.com/campushub/classroom-api/pkg/qr"
	"github.com/campushub/classroom-api/pkg/response"
)

type qrRoomReader interface {
	Get(ctx context.Context, id string) (*dto.RoomDetail, error)
}

// QRHandler serves printable QR codes linking to the public room page.
type QRHandler struct {
	rooms     qrRoomReader
	generator *qr.Generator
	baseURL   string
}

// NewQRHandler constructs the handler.
func NewQRHandler(rooms qrRoomReader, generator *qr.Generator, baseURL string) *QRHandler {
	return &QRHandler{rooms: rooms, generator: generator, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// RoomCode godoc
// @Summary QR code for a room page
// @Description Returns a PNG pointing at the public room detail page.
// @Tags Rooms
// @Produce png
// @Param id path string true "Room ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /rooms/{id}/qr [get]
func (h *QRHandler) RoomCode(c *gin.Context) {
	detail, err := h.rooms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	url := fmt.Sprintf("%s/rooms/%s", h.baseURL, detail.Room.ID)
	png, err := h.generator.Encode(url)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render qr code"))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", "room-"+detail.Room.ID+".png"))
	c.Data(http.StatusOK, "image/png", png)
}
