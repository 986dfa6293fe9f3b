package ai

import (
	"fmt"
	"strings"
	"time"
)

// timeOfDay buckets the hour the way the app talks to users
func timeOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "manhã"
	case h < 18:
		return "tarde"
	default:
		return "noite"
	}
}

// BuildNotificationPrompt renders the smart-notification prompt shared by all providers
func BuildNotificationPrompt(nc NotificationContext) string {
	now := nc.Now
	if now.IsZero() {
		now = time.Now()
	}

	return fmt.Sprintf(`Você é o "Smart Notification System" do HabitFlow.
Hora atual: %s.
Usuário: %s.
Hábitos pendentes hoje: %s.

Tarefa: Crie uma notificação push curta, inteligente e motivadora (max 15 palavras).
Use contexto de tempo (ex: "Ainda dá tempo", "Comece o dia vencendo").
Seja levemente provocativo ou encorajador. Use 1 emoji.
Responda APENAS o texto da notificação.`, timeOfDay(now), nc.UserName, strings.Join(nc.PendingHabits, ", "))
}

// cleanText strips the wrapping quotes and whitespace models like to add
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"“”`)
	return strings.TrimSpace(s)
}
