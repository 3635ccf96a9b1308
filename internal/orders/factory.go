package orders

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/storeshop/pkg/config"
	"gorm.io/gorm"
)

// NewSink builds the order sink selected by cfg. db backs the event log and
// may be nil for the matrix sink.
func NewSink(cfg config.OrdersConfig, db *gorm.DB) (Sink, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Sink)) {
	case config.OrderSinkEventLog:
		if db == nil {
			return nil, fmt.Errorf("database required for the %s sink", config.OrderSinkEventLog)
		}
		return NewEventLogSink(db), nil
	case config.OrderSinkMatrix:
		return NewMatrixSink(cfg.MatrixPath), nil
	}
	return nil, fmt.Errorf("unknown order sink %q", cfg.Sink)
}

// NewAuditLog builds the audit log selected by cfg.
func NewAuditLog(cfg config.OrdersConfig, db *gorm.DB) (AuditLog, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Audit)) {
	case config.AuditTargetDB:
		if db == nil {
			return nil, fmt.Errorf("database required for the %s audit log", config.AuditTargetDB)
		}
		return NewDBAudit(db), nil
	case config.AuditTargetSpreadsheet:
		return NewSpreadsheetAudit(cfg.AuditPath), nil
	case config.AuditTargetOff, "":
		return NopAudit{}, nil
	}
	return nil, fmt.Errorf("unknown audit target %q", cfg.Audit)
}
