// Package notify delivers analysis findings to users through a message
// broker. The API and the alerts worker publish; a delivery service on the
// other side of the queue turns notifications into push messages or email.
package notify

import (
	"encoding/json"
	"time"
)

// Notification kinds, one per analysis source.
const (
	KindBudgetAlert  = "alerta_presupuesto"
	KindAnomaly      = "anomalia_gastos"
	KindTip          = "tip_financiero"
	KindForecast     = "recomendacion_ml"
	KindWeeklyReport = "reporte_semanal"
)

// Notification is one message destined for a user.
type Notification struct {
	UserID    string            `json:"user_id"`
	Kind      string            `json:"tipo"`
	Title     string            `json:"titulo"`
	Body      string            `json:"cuerpo"`
	Data      map[string]string `json:"datos,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewNotification builds a timestamped notification.
func NewNotification(userID, kind, title, body string) *Notification {
	return &Notification{
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the notification to JSON bytes.
func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// NotificationFromJSON parses a notification from JSON bytes.
func NotificationFromJSON(data []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
