package domain

// RecipientResult — результат отправки для одного номера
// Поле Response — часть wire-контракта: "Ok" либо "Failed: <причина>"
type RecipientResult struct {
	MessageID string `json:"message_id"` // ID сообщения, под которым оно попало (или попало бы) в спул
	DLRStatus string `json:"dlr_status"` // URL, по которому появится статус доставки
	Response  string `json:"response"`   // Итог для этого номера
}

// SendResult — агрегированный результат рассылки одного текста
type SendResult struct {
	SentText   string                      `json:"sent_text"`       // Исходный текст
	PartsCount int                         `json:"parts_count"`     // Сегментов на одного получателя
	Queue      string                      `json:"queue,omitempty"` // Очередь, если была указана
	Mobiles    map[string]*RecipientResult `json:"mobiles"`         // Результат по каждому номеру
}

// QuotaInfo — текущее состояние квоты
type QuotaInfo struct {
	Remaining int // Оставшиеся сегменты (может быть отрицательным при превышении)
	Max       int // Максимум сегментов за период
	DaysLeft  int // Полных дней до конца расчётного периода
}
