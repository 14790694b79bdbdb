package reservation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookyourstay/stay-api/internal/pkg/clock"
	"github.com/bookyourstay/stay-api/internal/pkg/notify"
)

// PaymentWallet is the only way reservations are paid.
const PaymentWallet = "wallet"

type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "pending"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// InvoiceLine is one row of an invoice. Discounts are negative.
type InvoiceLine struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Amount      int64  `json:"amount"`
}

// Invoice is derived from a stored reservation on demand; nothing about it
// is persisted separately, so it always reflects the reservation's state.
type Invoice struct {
	Number           string        `json:"number"`
	ReservationID    uuid.UUID     `json:"reservation_id"`
	ConfirmationCode string        `json:"confirmation_code"`
	GuestID          uuid.UUID     `json:"guest_id"`
	ListingID        uuid.UUID     `json:"listing_id"`
	ListingName      string        `json:"listing_name,omitempty"`
	IssuedAt         time.Time     `json:"issued_at"`
	Start            string        `json:"start"`
	End              string        `json:"end"`
	Nights           int           `json:"nights"`
	Lines            []InvoiceLine `json:"lines"`
	Subtotal         int64         `json:"subtotal"`
	Discount         int64         `json:"discount"`
	TaxRateBP        int64         `json:"tax_rate_bp"`
	Tax              int64         `json:"tax"`
	Total            int64         `json:"total"`
	RefundedAmount   int64         `json:"refunded_amount"`
	PaymentMethod    string        `json:"payment_method"`
	Status           InvoiceStatus `json:"status"`
	QRReference      string        `json:"qr_reference"`
}

// InvoiceNumber is FAC- followed by the first eight hex digits of the
// reservation ID, so every rendering of an invoice carries the same number.
func InvoiceNumber(reservationID uuid.UUID) string {
	return "FAC-" + strings.ToUpper(strings.ReplaceAll(reservationID.String(), "-", "")[:8])
}

func invoiceStatus(s Status) InvoiceStatus {
	switch s {
	case StatusConfirmed, StatusCompleted:
		return InvoicePaid
	case StatusCancelled:
		return InvoiceCancelled
	default:
		return InvoicePending
	}
}

// NewInvoice itemizes r: lodging, subtype fees, the offer discount and tax.
func NewInvoice(r *Reservation, listingName string) *Invoice {
	inv := &Invoice{
		Number:           InvoiceNumber(r.ID),
		ReservationID:    r.ID,
		ConfirmationCode: r.ConfirmationCode,
		GuestID:          r.GuestID,
		ListingID:        r.ListingID,
		ListingName:      listingName,
		IssuedAt:         r.CreatedAt,
		Start:            r.Start.Format(clock.DateLayout),
		End:              r.End.Format(clock.DateLayout),
		Nights:           r.Nights(),
		Subtotal:         r.Subtotal,
		Discount:         r.Discount,
		TaxRateBP:        r.TaxRateBP,
		Tax:              r.Tax,
		Total:            r.Total,
		RefundedAmount:   r.RefundedAmount,
		PaymentMethod:    PaymentWallet,
		Status:           invoiceStatus(r.Status),
	}
	if r.ConfirmedAt != nil {
		inv.IssuedAt = *r.ConfirmedAt
	}

	lodging := "Alojamiento"
	if listingName != "" {
		lodging += " " + listingName
	}
	if r.Lodging > 0 {
		inv.Lines = append(inv.Lines, InvoiceLine{
			Code: "lodging", Description: lodging,
			Quantity: inv.Nights, UnitPrice: r.NightlyRate, Amount: r.Lodging,
		})
		for _, f := range r.Fees {
			inv.Lines = append(inv.Lines, InvoiceLine{
				Code: f.Code, Description: feeLabel(f.Code),
				Quantity: 1, UnitPrice: f.Amount, Amount: f.Amount,
			})
		}
	} else {
		// stays booked before the breakdown was stored carry only the subtotal
		inv.Lines = append(inv.Lines, InvoiceLine{
			Code: "lodging", Description: lodging, Quantity: 1, UnitPrice: r.Subtotal, Amount: r.Subtotal,
		})
	}
	if r.Discount > 0 {
		desc := "Descuento"
		if r.OfferName != "" {
			desc += " " + r.OfferName
		}
		inv.Lines = append(inv.Lines, InvoiceLine{
			Code: "discount", Description: desc, Quantity: 1, UnitPrice: -r.Discount, Amount: -r.Discount,
		})
	}
	inv.Lines = append(inv.Lines, InvoiceLine{
		Code: "tax", Description: fmt.Sprintf("IVA %s%%", percent(r.TaxRateBP)),
		Quantity: 1, UnitPrice: r.Tax, Amount: r.Tax,
	})

	inv.QRReference = fmt.Sprintf("QR_%s_%d", inv.Number, inv.Total)
	return inv
}

var feeLabels = map[string]string{
	"cleaning":         "Aseo",
	"deposit":          "Depósito",
	"pool":             "Recargo piscina",
	"events_insurance": "Seguro de eventos",
	"maintenance":      "Mantenimiento",
}

func feeLabel(code string) string {
	if l, ok := feeLabels[code]; ok {
		return l
	}
	return code
}

// percent renders basis points, e.g. 1900 as "19" and 1250 as "12.5".
func percent(bp int64) string {
	out := fmt.Sprintf("%d.%02d", bp/100, bp%100)
	return strings.TrimSuffix(strings.TrimRight(out, "0"), ".")
}

// Text renders the invoice as the plain-text document sent to the guest.
func (inv *Invoice) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "FACTURA %s\n", inv.Number)
	fmt.Fprintf(&b, "Reserva: %s\n", inv.ConfirmationCode)
	fmt.Fprintf(&b, "Fecha: %s\n", inv.IssuedAt.UTC().Format("02/01/2006 15:04"))
	if inv.ListingName != "" {
		fmt.Fprintf(&b, "Alojamiento: %s\n", inv.ListingName)
	}
	fmt.Fprintf(&b, "Periodo: %s a %s (%d noches)\n\n", inv.Start, inv.End, inv.Nights)
	for _, l := range inv.Lines {
		fmt.Fprintf(&b, "%-32s %3d x %10d = %10d\n", l.Description, l.Quantity, l.UnitPrice, l.Amount)
	}
	fmt.Fprintf(&b, "\nSubtotal: $%d\n", inv.Subtotal)
	fmt.Fprintf(&b, "Descuentos: -$%d\n", inv.Discount)
	fmt.Fprintf(&b, "Impuestos: $%d\n", inv.Tax)
	fmt.Fprintf(&b, "TOTAL: $%d\n\n", inv.Total)
	if inv.RefundedAmount > 0 {
		fmt.Fprintf(&b, "Reembolsado: $%d\n", inv.RefundedAmount)
	}
	fmt.Fprintf(&b, "Método de pago: %s\n", inv.PaymentMethod)
	fmt.Fprintf(&b, "Estado: %s\n", inv.Status)
	fmt.Fprintf(&b, "Código QR: %s\n", inv.QRReference)
	return b.String()
}

// Attachment wraps the rendered invoice for a notice.
func (inv *Invoice) Attachment() *notify.Attachment {
	return &notify.Attachment{
		Filename:    strings.ToLower(inv.Number) + ".txt",
		ContentType: "text/plain; charset=utf-8",
		Data:        []byte(inv.Text()),
	}
}
