package googlesheets

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"
	backupPrefix        = "ASDB_"
	assetSheet          = "자산관리"
	tradeSheet          = "거래관리"
)

type BackupFile struct {
	ID          string
	Name        string
	CreatedTime time.Time
}

// Workbook is the subset of Drive and Sheets used by a backup run.
type Workbook interface {
	Create(ctx context.Context, name, folderID string) (string, error)
	TransferOwnership(ctx context.Context, fileID, email string) error
	PrepareSheets(ctx context.Context, spreadsheetID string) error
	Write(ctx context.Context, spreadsheetID string, assets, trades [][]string) error
	ListBackups(ctx context.Context, folderID string) ([]BackupFile, error)
	Delete(ctx context.Context, fileID string) error
}

type googleWorkbook struct {
	drive  *drive.Service
	sheets *sheets.Service
}

func NewWorkbook(ctx context.Context, source oauth2.TokenSource) (Workbook, error) {
	driveService, err := drive.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive client: %w", err)
	}
	sheetsService, err := sheets.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &googleWorkbook{drive: driveService, sheets: sheetsService}, nil
}

func (w *googleWorkbook) Create(ctx context.Context, name, folderID string) (string, error) {
	file, err := w.drive.Files.Create(&drive.File{
		Name:     name,
		MimeType: spreadsheetMimeType,
		Parents:  []string{folderID},
	}).Fields("id").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create spreadsheet %s: %w", name, err)
	}
	return file.Id, nil
}

func (w *googleWorkbook) TransferOwnership(ctx context.Context, fileID, email string) error {
	_, err := w.drive.Permissions.Create(fileID, &drive.Permission{
		Role:         "owner",
		Type:         "user",
		EmailAddress: email,
	}).TransferOwnership(true).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to transfer ownership to %s: %w", email, err)
	}
	return nil
}

// PrepareSheets renames the default sheet and adds the trade sheet.
func (w *googleWorkbook) PrepareSheets(ctx context.Context, spreadsheetID string) error {
	_, err := w.sheets.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{
				UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
					Properties: &sheets.SheetProperties{SheetId: 0, Title: assetSheet, ForceSendFields: []string{"SheetId"}},
					Fields:     "title",
				},
			},
			{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: tradeSheet},
				},
			},
		},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to prepare sheets: %w", err)
	}
	return nil
}

func (w *googleWorkbook) Write(ctx context.Context, spreadsheetID string, assets, trades [][]string) error {
	_, err := w.sheets.Spreadsheets.Values.BatchUpdate(spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data: []*sheets.ValueRange{
			{Range: assetSheet + "!A1", Values: toValues(assets)},
			{Range: tradeSheet + "!A1", Values: toValues(trades)},
		},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write backup values: %w", err)
	}
	return nil
}

func (w *googleWorkbook) ListBackups(ctx context.Context, folderID string) ([]BackupFile, error) {
	query := fmt.Sprintf("'%s' in parents and name contains '%s' and trashed = false", folderID, backupPrefix)
	list, err := w.drive.Files.List().
		Q(query).
		Fields("files(id, name, createdTime)").
		OrderBy("createdTime desc").
		PageSize(1000).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	files := make([]BackupFile, 0, len(list.Files))
	for _, f := range list.Files {
		created, _ := time.Parse(time.RFC3339, f.CreatedTime)
		files = append(files, BackupFile{ID: f.Id, Name: f.Name, CreatedTime: created})
	}
	return files, nil
}

func (w *googleWorkbook) Delete(ctx context.Context, fileID string) error {
	if err := w.drive.Files.Delete(fileID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete backup %s: %w", fileID, err)
	}
	return nil
}

func toValues(table [][]string) [][]interface{} {
	values := make([][]interface{}, len(table))
	for i, row := range table {
		values[i] = make([]interface{}, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}
	return values
}
