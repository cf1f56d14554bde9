package bot

import (
	"fmt"
	"time"

	"github.com/djenggot/orderbot/internal/notify"
	"github.com/djenggot/orderbot/internal/order"
	"github.com/djenggot/orderbot/internal/session"
)

// User-facing texts, kept in Indonesian to match the restaurant's audience.
const (
	replyHelp = "Selamat datang di Bot Pesanan The Djenggot!\n\n" +
		"Ketik *!pesan* untuk memulai pemesanan.\n" +
		"Ketik *!status* untuk melihat status pesanan terakhir Anda.\n" +
		"Ketik *!batal* untuk membatalkan pemesanan yang sedang berjalan."

	replyGreeting = "Selamat datang di Bot Pesanan The Djenggot!\n\n" +
		"Silakan masukkan nama pemesan:"

	replyAskFood    = "Makanan yang dipesan:"
	replyAskPayment = "Metode pembayaran:"

	replyMidFlowCommand = "Maaf, Anda sedang dalam proses pemesanan. " +
		"Silakan selesaikan pemesanan terlebih dahulu atau ketik *!batal* untuk membatalkan."

	replyCancelled = "Pemesanan dibatalkan. Ketik *!pesan* untuk memulai lagi."

	replyNoOrders = "Tidak ada pesanan yang tersimpan untuk nomor ini."

	replyCommitFailed = "Terjadi kesalahan saat menyimpan pesanan. Silakan coba lagi."
	replyStatusFailed = "Terjadi kesalahan saat mengambil status pesanan."
)

func renderConfirmation(o *order.Order) string {
	return "Pesanan Anda telah diterima!\n\n" +
		fmt.Sprintf("*Nama Pemesan*: %s\n", o.CustomerName) +
		fmt.Sprintf("*Makanan yang dipesan*: %s\n", o.FoodItem) +
		fmt.Sprintf("*Pembayaran*: %s\n", o.PaymentMethod) +
		fmt.Sprintf("*Order ID*: %s\n\n", o.ID) +
		"Silakan tunggu konfirmasi dari kami.\n\n" +
		"Jika Anda ingin memeriksa status pesanan Anda, silakan ketik *!status*"
}

func renderStatus(o *order.Order, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	ts := o.CreatedAt.In(loc).Format("02/01/2006 15.04.05")
	return "*Status Pesanan Terakhir:*\n\n" +
		fmt.Sprintf("*ID:* %s\n", o.ID) +
		fmt.Sprintf("*Nama:* %s\n", o.CustomerName) +
		fmt.Sprintf("*Makanan:* %s\n", o.FoodItem) +
		fmt.Sprintf("*Pembayaran:* %s\n", o.PaymentMethod) +
		fmt.Sprintf("*Waktu:* %s\n", ts) +
		fmt.Sprintf("*No. HP:* %s\n", o.CustomerID) +
		fmt.Sprintf("*Status:* %s\n", o.Status)
}

func renderNotification(n *notify.Notification) string {
	return "Status pesanan terbaru Anda telah diperbarui!\n" +
		fmt.Sprintf("*Order ID*: %s\n", n.OrderID) +
		fmt.Sprintf("*Status baru*: %s", n.Status)
}

// promptFor re-asks the question belonging to the current step.
func promptFor(step session.Step) string {
	switch step {
	case session.StepAwaitingName:
		return replyGreeting
	case session.StepAwaitingFood:
		return replyAskFood
	case session.StepAwaitingPayment:
		return replyAskPayment
	default:
		return replyHelp
	}
}
