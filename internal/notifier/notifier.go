package notifier

import (
	"fmt"
	"math/big"
	"runtime/debug"

	"github.com/dinari-africa/dinari-ledger/internal/models"
	"github.com/dinari-africa/dinari-ledger/pkg/logger"
)

// adminEvents are always forwarded to the operator regardless of amount.
var adminEvents = map[string]bool{
	models.EventOwnershipTransferred: true,
	models.EventMinterChanged:        true,
	models.EventPaused:               true,
	models.EventUnpaused:             true,
	models.EventKYCUpdated:           true,
	models.EventDailyLimitUpdated:    true,
	models.EventRateUpdated:          true,
	models.EventCollateralUpdated:    true,
}

// Notifier forwards noteworthy journal events to the operator over the
// configured channels. It subscribes to the journal, so Notify runs on the
// journal's dispatch goroutine.
type Notifier struct {
	logger *logger.Logger

	// threshold is the minimum Transfer amount (base units) that triggers
	// an alert. Nil disables transfer alerts.
	threshold *big.Int

	TelegramNotifier *TelegramNotifier
	EmailNotifier    *EmailNotifier
}

func NewNotifier(logger *logger.Logger, threshold *big.Int, telNotif *TelegramNotifier, emailNotif *EmailNotifier) *Notifier {
	return &Notifier{logger: logger, threshold: threshold, TelegramNotifier: telNotif, EmailNotifier: emailNotif}
}

// safeCall runs a function with panic recovery (synchronous, no goroutine spawning)
func (n *Notifier) safeCall(fn func(), context string) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("Function panicked",
				"context", context,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Notify implements journal.Subscriber.
func (n *Notifier) Notify(event *models.Event) {
	if !n.shouldAlert(event) {
		return
	}
	message := formatAlert(event)

	if n.TelegramNotifier != nil {
		n.safeCall(func() { n.TelegramNotifier.SendNotification(message) }, "telegramNotification")
	}
	if n.EmailNotifier != nil {
		n.safeCall(func() { n.EmailNotifier.SendNotification(message) }, "emailNotification")
	}
}

func (n *Notifier) shouldAlert(event *models.Event) bool {
	if adminEvents[event.Kind] {
		return true
	}
	if event.Kind != models.EventTransfer || n.threshold == nil {
		return false
	}
	amount, ok := new(big.Int).SetString(event.Amount, 10)
	if !ok {
		n.logger.Error("Malformed amount in journal event: ", event.Amount)
		return false
	}
	return amount.Cmp(n.threshold) >= 0
}

func formatAlert(event *models.Event) string {
	switch event.Kind {
	case models.EventTransfer:
		from := event.From
		if from == "" {
			from = "mint"
		}
		to := event.To
		if to == "" {
			to = "burn"
		}
		return fmt.Sprintf("Large transfer: %s -> %s amount %s", from, to, event.Amount)
	case models.EventRateUpdated:
		return fmt.Sprintf("Rate updated: %s = %s", event.Currency, event.Amount)
	case models.EventKYCUpdated:
		state := "revoked"
		if event.Amount == "1" {
			state = "verified"
		}
		return fmt.Sprintf("KYC %s for %s", state, event.To)
	default:
		return fmt.Sprintf("%s: from=%s to=%s amount=%s", event.Kind, event.From, event.To, event.Amount)
	}
}
