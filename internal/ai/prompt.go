package ai

import "fmt"

// DefaultSenderName is used in the reply prompt when the sender is unknown.
const DefaultSenderName = "собеседник"

const (
	translatorSystemPrompt = "Ты профессиональный переводчик. Переводи тексты точно и естественно."
	organizerSystemPrompt  = "Ты профессиональный помощник организатора кинофестиваля. " +
		"Ты составляешь продуманные и располагающие ответы для потенциальных участников."
)

// BuildTranslationMessages asks for the message in Russian or Ukrainian,
// whichever reads more naturally, with no commentary around it.
func BuildTranslationMessages(message string) []Message {
	prompt := fmt.Sprintf(`Переведи следующее сообщение на русский или украинский язык (выбери тот, который звучит естественнее). Если сообщение уже написано на русском или украинском, просто повтори его. Выведи только перевод, без пояснений:

"%s"`, message)

	return []Message{
		{Role: roleSystem, Content: translatorSystemPrompt},
		{Role: roleUser, Content: prompt},
	}
}

// BuildReplyMessages asks for three reply variants (formal, friendly, brief)
// in the language of the incoming message, as a JSON object with a
// "responses" array of {label, text}.
func BuildReplyMessages(message, senderName string) []Message {
	prompt := fmt.Sprintf(`Ты помогаешь организатору кинофестиваля. %s прислал(а) такое сообщение:

"%s"

Составь 3 варианта ответа на ТОМ ЖЕ ЯЗЫКЕ, на котором написано входящее сообщение:

1. Формальный и профессиональный
2. Дружелюбный и тёплый
3. Краткий и по делу

Каждый ответ должен:
- быть вежливым и приветливым
- мотивировать человека участвовать в кинофестивале
- создавать позитивный контакт
- быть на языке входящего сообщения
- звучать естественно и по-человечески

Верни ответ строго в формате JSON:
{
  "responses": [
    {"label": "Формальный вариант", "text": "текст ответа"},
    {"label": "Дружелюбный вариант", "text": "текст ответа"},
    {"label": "Краткий вариант", "text": "текст ответа"}
  ]
}

Никаких комментариев вне JSON.`, senderName, message)

	return []Message{
		{Role: roleSystem, Content: organizerSystemPrompt},
		{Role: roleUser, Content: prompt},
	}
}
