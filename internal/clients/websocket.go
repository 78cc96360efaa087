package clients

import (
	"context"
	"fmt"

	ws "debtkeeper/internal/transport/websocket"
)

type WebSocketClient struct {
	hub *ws.Hub
}

func NewWebSocketClient(hub *ws.Hub) *WebSocketClient {
	return &WebSocketClient{hub: hub}
}

// NotifyPaymentApplied tells an owner's open sessions that a payment landed
// and what the debt looks like afterwards.
func (c *WebSocketClient) NotifyPaymentApplied(ctx context.Context, ownerID int64, debtID, paymentID, remaining, status string) error {
	if c.hub == nil {
		return nil
	}

	message := &ws.Message{
		Type:    "payment_applied",
		Channel: fmt.Sprintf("notify_owner_of_payment#%d", ownerID),
		Data: map[string]interface{}{
			"debt_id":    debtID,
			"payment_id": paymentID,
			"remaining":  remaining,
			"status":     status,
		},
	}

	c.hub.Broadcast(ownerID, message)
	return nil
}

// NotifyDebtStatusChanged announces a lifecycle transition found by the
// reconciliation pass or billing cycle.
func (c *WebSocketClient) NotifyDebtStatusChanged(ctx context.Context, ownerID int64, debtID, from, to string) error {
	if c.hub == nil {
		return nil
	}

	message := &ws.Message{
		Type:    "debt_status_changed",
		Channel: fmt.Sprintf("notify_owner_of_status#%d", ownerID),
		Data: map[string]interface{}{
			"debt_id": debtID,
			"from":    from,
			"to":      to,
		},
	}

	c.hub.Broadcast(ownerID, message)
	return nil
}

func (c *WebSocketClient) NotifyExportProgress(ctx context.Context, ownerID int64, exportID string, progress float64, stage string) error {
	if c.hub == nil {
		return nil
	}

	data := map[string]interface{}{
		"id":       exportID,
		"progress": progress,
	}
	if stage != "" {
		data["stage"] = stage
	}

	message := &ws.Message{
		Type:    "export_progress",
		Channel: fmt.Sprintf("notify_owner_of_export_progress#%d", ownerID),
		Data:    data,
	}

	c.hub.Broadcast(ownerID, message)
	return nil
}

func (c *WebSocketClient) NotifyExportComplete(ctx context.Context, ownerID int64, exportID, url, filename string) error {
	if c.hub == nil {
		return nil
	}

	message := &ws.Message{
		Type:    "export_complete",
		Channel: fmt.Sprintf("notify_owner_of_export_complete#%d", ownerID),
		Data: map[string]interface{}{
			"id":       exportID,
			"url":      url,
			"filename": filename,
			"owner_id": ownerID,
		},
	}

	c.hub.Broadcast(ownerID, message)
	return nil
}

func (c *WebSocketClient) NotifyExportFailed(ctx context.Context, ownerID int64, exportID, errMsg string) error {
	if c.hub == nil {
		return nil
	}

	message := &ws.Message{
		Type:    "export_failed",
		Channel: fmt.Sprintf("notify_owner_of_export_failed#%d", ownerID),
		Data: map[string]interface{}{
			"id":       exportID,
			"message":  errMsg,
			"owner_id": ownerID,
		},
	}

	c.hub.Broadcast(ownerID, message)
	return nil
}
