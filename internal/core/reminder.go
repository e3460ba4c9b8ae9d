package core

import (
	"net/url"
	"strings"
)

// ReminderMessage composes the WhatsApp text sent to a participant for the
// invoice's current payment status.
func ReminderMessage(inv Invoice, s Settings) string {
	bank := "\n\n💳 *Rekening Pembayaran:*\n" + s.BankName + "\n" + s.AccountNo + "\na.n " + s.AccountName
	footer := "\n\nSalam lestari! 🏔️\n*VERTARA.ID*"
	trip := "*" + inv.Destination + "* (" + inv.TripDate + ")"

	var b strings.Builder
	b.WriteString("Halo Kak *" + inv.FullName + "*,\n\n")
	switch inv.Status {
	case StatusDepositPaid:
		b.WriteString("Terima kasih pembayaran DP untuk trip " + trip + " sudah kami terima.\n\n")
		b.WriteString("Berikut update tagihan Anda:\n")
		b.WriteString("🔖 No Invoice: *" + inv.InvoiceNo + "*\n")
		b.WriteString("💰 Total Tagihan: *" + inv.Total.String() + "*\n")
		b.WriteString("🟡 Status: *DP DITERIMA*\n\n")
		b.WriteString("Mohon kesediaannya untuk melakukan pelunasan sebelum hari keberangkatan.")
		b.WriteString(bank)
	case StatusFullyPaid:
		b.WriteString("Pembayaran LUNAS untuk trip " + trip + " telah kami terima. ")
		b.WriteString("Terima kasih sudah mempercayakan petualangan Anda bersama Vertara.id.\n\n")
		b.WriteString("🔖 No Invoice: *" + inv.InvoiceNo + "*\n")
		b.WriteString("🟢 Status: *LUNAS (PAID)*\n\n")
		b.WriteString("Sampai jumpa di meeting point! 🚐💨")
	default:
		b.WriteString("Terima kasih telah mendaftar trip " + trip + ".\n\n")
		b.WriteString("Berikut rincian tagihan Anda:\n")
		b.WriteString("🔖 No Invoice: *" + inv.InvoiceNo + "*\n")
		b.WriteString("💰 Total: *" + inv.Total.String() + "*\n")
		b.WriteString("🔴 Status: *BELUM LUNAS (UNPAID)*\n\n")
		b.WriteString("Mohon dapat segera menyelesaikan pembayaran untuk mengamankan slot Anda.")
		b.WriteString(bank)
	}
	b.WriteString(footer)
	return b.String()
}

// NormalizePhone strips non-digits and turns a leading 0 into the 62
// country code.
func NormalizePhone(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if strings.HasPrefix(digits, "0") {
		return "62" + digits[1:]
	}
	return digits
}

// WhatsAppLink returns the wa.me link opening a chat with the reminder text.
func WhatsAppLink(inv Invoice, s Settings) string {
	text := strings.ReplaceAll(url.QueryEscape(ReminderMessage(inv, s)), "+", "%20")
	return "https://wa.me/" + NormalizePhone(inv.WhatsApp) + "?text=" + text
}
