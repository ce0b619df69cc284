package handler

import (
	"encoding/json"
	"errors"
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/milaq/smstools-http-api/internal/auth"
	"github.com/milaq/smstools-http-api/internal/config"
	"github.com/milaq/smstools-http-api/internal/service"
)

// SMSHandler — обработчик запросов к спулу и отправке
type SMSHandler struct {
	spool *service.SpoolService
	send  *service.SendService
	cfg   config.SpoolConfig
}

// NewSMSHandler создаёт новый обработчик
func NewSMSHandler(spool *service.SpoolService, send *service.SendService, cfg config.SpoolConfig) *SMSHandler {
	return &SMSHandler{
		spool: spool,
		send:  send,
		cfg:   cfg,
	}
}

// username возвращает учётную запись запроса
// Middleware basicauth кладёт имя в Locals; без аутентификации
// все запросы идут от имени anonymous
func username(c *fiber.Ctx) string {
	if user, ok := c.Locals("username").(string); ok && user != "" {
		return user
	}
	return auth.AnonymousUser
}

// List возвращает листинг каталога спула
// @Summary Список сообщений
// @Description Возвращает идентификаторы сообщений в каталоге спула. Файлы с суффиксом .LOCK не показываются.
// @Tags sms
// @Produce json
// @Param kind path string true "Вид спула" Enums(incoming, outgoing, sent, failed)
// @Success 200 {object} domain.SpoolListing "Листинг каталога"
// @Failure 404 {object} ErrorResponse "Неизвестный вид спула"
// @Router /sms/{kind}/ [get]
func (h *SMSHandler) List(c *fiber.Ctx) error {
	listing, err := h.spool.List(c.Params("kind"))
	if err != nil {
		if errors.Is(err, service.ErrUnknownKind) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Error: "Неизвестный вид спула",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Внутренняя ошибка сервера",
		})
	}
	return c.JSON(listing)
}

// Get возвращает сообщение из спула
// @Summary Получить сообщение
// @Description Возвращает заголовки и декодированный текст сообщения. Доступно владельцу и администраторам.
// @Tags sms
// @Produce json
// @Param kind path string true "Вид спула" Enums(incoming, outgoing, sent, failed)
// @Param message_id path string true "ID сообщения"
// @Success 200 {object} map[string]string "Сообщение"
// @Failure 403 {object} ErrorResponse "Доступ запрещён"
// @Failure 404 {object} ErrorResponse "Сообщение не найдено"
// @Router /sms/{kind}/{message_id} [get]
func (h *SMSHandler) Get(c *fiber.Ctx) error {
	msg, err := h.spool.Get(username(c), c.Params("kind"), c.Params("message_id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Error: "Доступ запрещён",
			})
		case errors.Is(err, service.ErrUnknownKind), errors.Is(err, service.ErrMessageNotFound):
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Error: "Сообщение не найдено",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Внутренняя ошибка сервера",
		})
	}

	// Ответ — заголовки файла как есть плюс текст и идентификатор
	response := fiber.Map{}
	for key, val := range msg.Headers {
		response[key] = val
	}
	response["text"] = msg.Text
	response["message_id"] = msg.ID
	return c.JSON(response)
}

// Delete удаляет сообщение из спула
// @Summary Удалить сообщение
// @Description Удаляет сообщение из каталога спула. Только для администраторов.
// @Tags sms
// @Produce json
// @Param kind path string true "Вид спула" Enums(incoming, outgoing, sent, failed)
// @Param message_id path string true "ID сообщения"
// @Success 200 {object} map[string]string "Квалифицированное имя удалённого сообщения"
// @Failure 403 {object} ErrorResponse "Доступ запрещён"
// @Failure 404 {object} ErrorResponse "Сообщение не найдено"
// @Router /sms/{kind}/{message_id} [delete]
func (h *SMSHandler) Delete(c *fiber.Ctx) error {
	deleted, err := h.spool.Delete(username(c), c.Params("kind"), c.Params("message_id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Error: "Доступ запрещён",
			})
		case errors.Is(err, service.ErrUnknownKind), errors.Is(err, service.ErrMessageNotFound):
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Error: "Сообщение не найдено",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Внутренняя ошибка сервера",
		})
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}

// Send принимает запрос на рассылку
// @Summary Отправить SMS
// @Description Ставит сообщение в каталог outgoing для каждого получателя. Ошибки по отдельным номерам возвращаются в поле response этого номера.
// @Tags sms
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Поля: mobiles (массив строк), text (строка), queue (строка, необязательно)"
// @Success 200 {object} domain.SendResult "Результат по каждому номеру"
// @Failure 400 {object} ErrorResponse "Некорректный запрос"
// @Router /sms/outgoing [post]
func (h *SMSHandler) Send(c *fiber.Ctx) error {
	payload, errMsg := h.sendPayload(c)
	if errMsg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: errMsg})
	}

	queue := payload.queue
	if queue == "" {
		queue = h.cfg.DefaultQueue
	}

	result, err := h.send.Send(service.SendRequest{
		Caller:     username(c),
		Mobiles:    payload.mobiles,
		Text:       payload.text,
		Queue:      queue,
		StatusBase: c.BaseURL() + path.Dir(c.Path()),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Внутренняя ошибка сервера",
		})
	}
	return c.JSON(result)
}

type sendPayload struct {
	mobiles []string
	text    string
	queue   string
}

// sendPayload разбирает тело запроса на рассылку
// POST несёт JSON-объект; GET — параметры mobiles (через запятую,
// пробелы восстанавливаются в плюсы) и text
// Возвращает текст ошибки для некорректных запросов
func (h *SMSHandler) sendPayload(c *fiber.Ctx) (sendPayload, string) {
	raw := map[string]any{}

	if c.Method() == fiber.MethodPost {
		if err := json.Unmarshal(c.Body(), &raw); err != nil {
			return sendPayload{}, "Wrong JSON object"
		}
	} else {
		if mobiles := c.Query("mobiles"); mobiles != "" {
			// Плюс в query-строке декодируется в пробел — возвращаем его
			parts := strings.Split(strings.ReplaceAll(mobiles, " ", "+"), ",")
			list := make([]any, len(parts))
			for i, p := range parts {
				list[i] = p
			}
			raw["mobiles"] = list
		}
		if text := c.Query("text"); text != "" {
			raw["text"] = text
		}
	}

	for _, required := range []string{"mobiles", "text"} {
		if _, ok := raw[required]; !ok {
			return sendPayload{}, "Missing required: " + required
		}
	}

	list, ok := raw["mobiles"].([]any)
	if !ok {
		return sendPayload{}, "mobiles is not array"
	}
	if len(list) == 0 {
		return sendPayload{}, "mobiles array is empty"
	}

	payload := sendPayload{mobiles: make([]string, len(list))}
	for i, item := range list {
		mobile, ok := item.(string)
		if !ok {
			return sendPayload{}, "mobiles is not unicode"
		}
		payload.mobiles[i] = mobile
	}

	text, ok := raw["text"].(string)
	if !ok {
		return sendPayload{}, "text is not unicode"
	}
	payload.text = text

	if queue, ok := raw["queue"].(string); ok {
		payload.queue = queue
	}
	return payload, ""
}
