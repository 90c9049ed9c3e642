package order

import "fmt"

const (
	textPromptName    = "📝 Оформление заказа\n\nШаг 1 из 3. Введите ваше ФИО:"
	textPromptPhone   = "Шаг 2 из 3. Введите ваш номер телефона для связи:"
	textPromptProduct = "Шаг 3 из 3. Что вы хотите заказать? Опишите полностью ваш заказ:\n\nПример: Болт M8x20, 50 шт"
	textEmptyInput    = "⚠️ Ответ не может быть пустым.\n\n"
	textCancelled     = "❌ Заказ отменен. Чтобы начать заново, используйте /order"
	textNothing       = "Нет активного заказа. Чтобы оформить заказ, используйте /order"
)

// Confirmation is the plain-text message shown to the user after the last step.
func Confirmation(r Record) string {
	return fmt.Sprintf(`✅ Ваш заказ принят!

Номер заказа: %d
ФИО: %s
Телефон: %s
Заказ: %s

Ваш заказ направлен администратору. С вами свяжутся в ближайшее время для подтверждения.`,
		r.Number, r.FullName, r.Phone, r.Product)
}
