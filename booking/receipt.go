package booking

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"nonact/middleware"
	"nonact/models"
	"nonact/store"
	"nonact/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// Receipt handles GET /api/bookings/:id/receipt. It renders a PDF summary
// of the caller's own booking with a QR code carrying the booking id, for
// presentation on the day.
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookingID := ps.ByName("id")
	userID := middleware.UserID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var b models.Booking
	err := h.Store.SelectOne(ctx, store.TableBookings, store.Filter{"id": bookingID, "userid": userID}, &b)
	if err == store.ErrNotFound {
		utils.RespondWithError(w, http.StatusNotFound, "booking not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	var s models.Staff
	if err := h.Store.SelectOne(ctx, store.TableStaff, store.Filter{"id": b.StaffID}, &s); err != nil && err != store.ErrNotFound {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	qrPNG, err := qrcode.Encode("booking|"+b.ID, qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Booking Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Booking ID: %s", b.ID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Staff: %s", s.Nickname))
	pdf.Ln(8)
	for i, slot := range b.Slots {
		pdf.Cell(0, 10, fmt.Sprintf("Candidate %d: %s %s", i+1, slot.Date, slot.Start))
		pdf.Ln(8)
	}
	pdf.Cell(0, 10, fmt.Sprintf("Duration: %d hour(s)", b.Duration))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Payment: %s", b.PaymentMethod))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Status: %s", b.Status))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=booking-"+b.ID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
