package notify

import (
	"fmt"
	"html"

	"github.com/kursant77/ajabo-f69de2d8/internal/application/notification"
	domorder "github.com/kursant77/ajabo-f69de2d8/internal/domain/order"
)

const defaultProductName = "Taomlar"

var templates = map[string]string{
	notification.StatusConfirmed: "✨ <b>Yangi buyurtma qabul qilindi!</b>\n\n" +
		"🆔 <b>Buyurtma:</b> <code>%s</code>\n" +
		"🍔 <b>Mahsulot:</b> %s\n" +
		"%s" +
		"⏳ <b>Holat:</b> Tasdiqlandi\n\n" +
		"<i>Tez orada taomingizni tayyorlashni boshlaymiz!</i>",
	notification.StatusReady: "🍳 <b>Buyurtmangiz tayyor bo'ldi!</b>\n\n" +
		"🆔 <b>Buyurtma:</b> <code>%s</code>\n" +
		"🍔 <b>Mahsulot:</b> %s\n" +
		"%s" +
		"🏃‍♂️ <b>Holat:</b> Dastavkaga berildi\n\n" +
		"<i>Dastavkachi hozir yo'lga chiqadi.</i>",
	notification.StatusDelivering: "🚚 <b>Buyurtmangiz yo'lda!</b>\n\n" +
		"🆔 <b>Buyurtma:</b> <code>%s</code>\n" +
		"🍔 <b>Mahsulot:</b> %s\n" +
		"%s" +
		"📍 <b>Holat:</b> Yetkazilmoqda\n\n" +
		"<i>Iltimos, kuting, dastavkachi yaqin orada yetib boradi.</i>",
	notification.StatusDelivered: "✅ <b>Tabriklaymiz! Buyurtma yetkazildi!</b>\n\n" +
		"🆔 <b>Buyurtma:</b> <code>%s</code>\n" +
		"🍔 <b>Mahsulot:</b> %s\n" +
		"%s" +
		"🏁 <b>Holat:</b> Yakunlandi\n\n" +
		"<b>Yoqimli ishtaha! 🍽️</b>\n" +
		"<i>Bizni tanlaganingiz uchun rahmat!</i>",
}

// takeawayReady replaces the courier wording for orders picked up at the counter.
const takeawayReady = "🍳 <b>Buyurtmangiz tayyor bo'ldi!</b>\n\n" +
	"🆔 <b>Buyurtma:</b> <code>%s</code>\n" +
	"🍔 <b>Mahsulot:</b> %s\n" +
	"%s" +
	"🛍 <b>Holat:</b> Olib ketishga tayyor\n\n" +
	"<i>Kassadan olib ketishingiz mumkin.</i>"

// Render builds the HTML message for n.
func Render(n notification.Notification) (string, error) {
	tpl, ok := templates[n.Status]
	if !ok {
		return "", fmt.Errorf("%w: %q", notification.ErrUnsupportedStatus, n.Status)
	}
	typ := domorder.Type(n.OrderType)
	if n.Status == notification.StatusReady && (typ == domorder.TypeTakeaway || typ == domorder.TypePreorder) {
		tpl = takeawayReady
	}

	product := n.ProductName
	if product == "" {
		product = defaultProductName
	}
	typeLine := ""
	if n.OrderType != "" {
		typeLine = "📦 <b>Turi:</b> " + html.EscapeString(typ.Label()) + "\n"
	}
	return fmt.Sprintf(tpl, domorder.DisplayID(n.OrderID), html.EscapeString(product), typeLine), nil
}
