package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"debtkeeper/internal/clients"
	"debtkeeper/internal/engine"
)

// ExportStorage is where finished schedule workbooks end up: local disk or s3,
// depending on deployment.
type ExportStorage interface {
	Save(ctx context.Context, fileName string, data []byte) (string, error)
	URL(ctx context.Context, key string) (string, error)
}

type ExportStatus struct {
	Key      string    `json:"key"`
	Type     string    `json:"type"`
	OwnerID  int64     `json:"owner_id"`
	DebtID   string    `json:"debt_id"`
	Progress float64   `json:"progress"`
	FileURL  *string   `json:"file_url"`
	FileName string    `json:"file_name"`
	Error    string    `json:"error,omitempty"`
	Created  time.Time `json:"created_at"`
}

const (
	exportSetKey = "export_ids"
	exportTTL    = 20 * time.Minute
)

// ExportService generates amortization schedule workbooks in the background,
// publishing progress over redis and the websocket hub.
type ExportService struct {
	debts   *DebtService
	redis   *clients.RedisClient
	storage ExportStorage
	ws      *clients.WebSocketClient
	log     *logrus.Logger
}

func NewExportService(
	debts *DebtService,
	redis *clients.RedisClient,
	storage ExportStorage,
	ws *clients.WebSocketClient,
	log *logrus.Logger,
) *ExportService {
	return &ExportService{
		debts:   debts,
		redis:   redis,
		storage: storage,
		ws:      ws,
		log:     log,
	}
}

func (s *ExportService) saveStatus(ctx context.Context, st *ExportStatus) error {
	if s.redis == nil {
		return nil
	}

	data, err := json.Marshal(st)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, st.Key, string(data), exportTTL); err != nil {
		return err
	}

	return s.redis.SAdd(ctx, exportSetKey, st.Key)
}

// StartScheduleExport validates the request synchronously, then generates the
// workbook in a goroutine. The returned export id can be polled or watched on
// the websocket channel.
func (s *ExportService) StartScheduleExport(ctx context.Context, debtID string, ownerID int64, now time.Time) (string, error) {
	view, err := s.debts.Get(ctx, debtID, ownerID, now)
	if err != nil {
		return "", err
	}

	exportID := fmt.Sprintf("exports:%s", uuid.NewString())

	status := &ExportStatus{
		Key:     exportID,
		Type:    "schedule",
		OwnerID: ownerID,
		DebtID:  debtID,
		Created: now,
	}
	_ = s.saveStatus(ctx, status)

	go s.runScheduleExport(context.Background(), status, view, now)

	return exportID, nil
}

func (s *ExportService) runScheduleExport(ctx context.Context, status *ExportStatus, view DebtView, now time.Time) {
	d := view.Debt
	result, err := engine.Schedule(d.CurrentAmount, d.InterestRate, d.MonthlyPaymentTarget, now)
	if err != nil {
		s.failExport(ctx, status, err)
		return
	}

	f := excelize.NewFile()
	sheet := "Schedule"
	f.SetSheetName(f.GetSheetName(0), sheet)

	_ = f.SetDocProps(&excelize.DocProperties{
		Creator: fmt.Sprintf("owner_%d", status.OwnerID),
	})

	headers := []string{"Period", "Date", "Payment", "Principal", "Interest", "Balance"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	total := len(result.Installments)
	chunkSize := 50

	for i, inst := range result.Installments {
		rowIdx := i + 2
		values := []any{
			inst.Period,
			inst.Date.Format("2006-01-02"),
			inst.Payment.StringFixed(2),
			inst.Principal.StringFixed(2),
			inst.Interest.StringFixed(2),
			inst.Balance.StringFixed(2),
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if (i+1)%chunkSize == 0 || i == total-1 {
			progress := math.Round(float64(i+1) / float64(total) * 100.0)
			// 100% is reserved for a ready file URL.
			if progress >= 100 {
				progress = 95
			}

			status.Progress = progress
			_ = s.saveStatus(ctx, status)

			if s.ws != nil {
				_ = s.ws.NotifyExportProgress(ctx, status.OwnerID, status.Key, progress, "generating")
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.failExport(ctx, status, err)
		return
	}

	fileName := fmt.Sprintf("schedule_%s_%s.xlsx", d.ID, time.Now().Format("20060102_150405"))

	status.Progress = 95
	_ = s.saveStatus(ctx, status)
	if s.ws != nil {
		_ = s.ws.NotifyExportProgress(ctx, status.OwnerID, status.Key, 95, "uploading")
	}

	key, err := s.storage.Save(ctx, fileName, buf.Bytes())
	if err != nil {
		s.failExport(ctx, status, err)
		return
	}
	url, err := s.storage.URL(ctx, key)
	if err != nil {
		s.failExport(ctx, status, err)
		return
	}

	status.FileURL = &url
	status.FileName = fileName
	status.Progress = 100
	_ = s.saveStatus(ctx, status)

	if s.ws != nil {
		_ = s.ws.NotifyExportProgress(ctx, status.OwnerID, status.Key, 100, "ready")
		_ = s.ws.NotifyExportComplete(ctx, status.OwnerID, status.Key, url, fileName)
	}

	s.log.WithFields(logrus.Fields{
		"export_id": status.Key,
		"debt_id":   status.DebtID,
		"periods":   total,
		"truncated": result.Truncated,
	}).Info("schedule export finished")
}

func (s *ExportService) failExport(ctx context.Context, status *ExportStatus, cause error) {
	status.Error = cause.Error()
	_ = s.saveStatus(ctx, status)

	if s.ws != nil {
		_ = s.ws.NotifyExportFailed(ctx, status.OwnerID, status.Key, cause.Error())
	}

	s.log.WithError(cause).WithFields(logrus.Fields{
		"export_id": status.Key,
		"debt_id":   status.DebtID,
	}).Warn("schedule export failed")
}

// GetExports lists an owner's known exports, newest first. Statuses expire
// from redis after exportTTL, so this is a window, not an archive.
func (s *ExportService) GetExports(ctx context.Context, ownerID int64) ([]ExportStatus, error) {
	if s.redis == nil {
		return nil, errors.New("redis client not configured")
	}

	keys, err := s.redis.SMembers(ctx, exportSetKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get export keys: %w", err)
	}

	var statuses []ExportStatus
	for _, key := range keys {
		data, err := s.redis.Get(ctx, key)
		if err != nil {
			continue
		}

		var status ExportStatus
		if err := json.Unmarshal([]byte(data), &status); err != nil {
			continue
		}

		if status.OwnerID == ownerID {
			statuses = append(statuses, status)
		}
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Created.After(statuses[j].Created)
	})

	return statuses, nil
}

func (s *ExportService) GetExport(ctx context.Context, exportID string, ownerID int64) (ExportStatus, error) {
	if s.redis == nil {
		return ExportStatus{}, errors.New("redis client not configured")
	}

	data, err := s.redis.Get(ctx, exportID)
	if err != nil {
		return ExportStatus{}, errors.New("export not found")
	}

	var status ExportStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return ExportStatus{}, fmt.Errorf("failed to parse export status: %w", err)
	}

	if status.OwnerID != ownerID {
		return ExportStatus{}, errors.New("export not found")
	}

	return status, nil
}
