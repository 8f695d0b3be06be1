package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/opd-ai/toxfer/interfaces"
)

const recordColumns = `
	transfer_id,
	message_id,
	chat_id,
	peer_public_key,
	group_id,
	is_group,
	handle,
	kind,
	outgoing,
	status,
	size,
	file_name,
	file_path,
	paused_by,
	opened,
	offline,
	expired,
	duration,
	created_at,
	updated_at`

type scanner interface {
	Scan(dest ...any) error
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// CreateTransferRecord inserts a new record.
func (s *Store) CreateTransferRecord(record *interfaces.TransferRecord) error {
	if err := validateRecord(record); err != nil {
		return err
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	_, err := s.db.Exec(
		`INSERT INTO transfer_records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		recordValues(record)...,
	)
	if err != nil {
		return fmt.Errorf("insert transfer record %q: %w", record.TransferID, err)
	}
	return nil
}

// ReadTransferRecord fetches one record by transfer id.
func (s *Store) ReadTransferRecord(transferID string) (*interfaces.TransferRecord, error) {
	row := s.db.QueryRow(
		`SELECT `+recordColumns+` FROM transfer_records WHERE transfer_id = ?`,
		transferID,
	)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interfaces.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get transfer record %q: %w", transferID, err)
	}
	return record, nil
}

// UpdateTransferRecord runs mutate against the stored record inside a
// transaction. An error from mutate rolls back and is returned unchanged.
func (s *Store) UpdateTransferRecord(transferID string, mutate func(*interfaces.TransferRecord) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin update of %q: %w", transferID, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRow(
		`SELECT `+recordColumns+` FROM transfer_records WHERE transfer_id = ?`,
		transferID,
	)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return interfaces.ErrRecordNotFound
		}
		return fmt.Errorf("read transfer record %q: %w", transferID, err)
	}

	if err := mutate(record); err != nil {
		return err
	}
	record.TransferID = transferID
	if err := validateRecord(record); err != nil {
		return err
	}
	record.UpdatedAt = time.Now().UTC()

	if err := writeRecord(tx, record); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update of %q: %w", transferID, err)
	}
	return nil
}

// DeleteTransferRecord removes one record.
func (s *Store) DeleteTransferRecord(transferID string) error {
	res, err := s.db.Exec(`DELETE FROM transfer_records WHERE transfer_id = ?`, transferID)
	if err != nil {
		return fmt.Errorf("delete transfer record %q: %w", transferID, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for delete of %q: %w", transferID, err)
	}
	if rowsAffected == 0 {
		return interfaces.ErrRecordNotFound
	}
	return nil
}

// CancelPendingRecords marks every waiting, loading or paused record
// canceled.
func (s *Store) CancelPendingRecords() (int, error) {
	res, err := s.db.Exec(
		`UPDATE transfer_records
		SET status = ?, updated_at = ?
		WHERE status IN (?, ?, ?)`,
		string(interfaces.RecordCanceled),
		time.Now().UTC().UnixMilli(),
		string(interfaces.RecordWaitingConfirmation),
		string(interfaces.RecordLoading),
		string(interfaces.RecordPaused),
	)
	if err != nil {
		return 0, fmt.Errorf("cancel pending transfer records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read rows affected for cancel pending: %w", err)
	}
	return int(n), nil
}

// ListTransferRecords returns records newest first.
func (s *Store) ListTransferRecords(filter interfaces.RecordFilter) ([]*interfaces.TransferRecord, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.ChatID != "" {
		where = append(where, "chat_id = ?")
		args = append(args, filter.ChatID)
	}

	query := `SELECT ` + recordColumns + ` FROM transfer_records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, transfer_id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfer records: %w", err)
	}
	defer rows.Close()

	var records []*interfaces.TransferRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfer records: %w", err)
	}
	return records, nil
}

func writeRecord(db execer, record *interfaces.TransferRecord) error {
	_, err := db.Exec(
		`UPDATE transfer_records SET
			message_id = ?,
			chat_id = ?,
			peer_public_key = ?,
			group_id = ?,
			is_group = ?,
			handle = ?,
			kind = ?,
			outgoing = ?,
			status = ?,
			size = ?,
			file_name = ?,
			file_path = ?,
			paused_by = ?,
			opened = ?,
			offline = ?,
			expired = ?,
			duration = ?,
			created_at = ?,
			updated_at = ?
		WHERE transfer_id = ?`,
		append(recordValues(record)[1:], record.TransferID)...,
	)
	if err != nil {
		return fmt.Errorf("update transfer record %q: %w", record.TransferID, err)
	}
	return nil
}

func validateRecord(record *interfaces.TransferRecord) error {
	if record.TransferID == "" {
		return errors.New("transfer_id is required")
	}
	if !record.Status.Valid() {
		return fmt.Errorf("invalid record status %q", record.Status)
	}
	if record.PausedBy == "" {
		record.PausedBy = interfaces.PausedByNone
	}
	switch record.PausedBy {
	case interfaces.PausedByNone, interfaces.PausedBySelf, interfaces.PausedByPeer:
	default:
		return fmt.Errorf("invalid paused_by %q", record.PausedBy)
	}
	return nil
}

// recordValues lists the columns in recordColumns order. Unsigned ids are
// stored bit-for-bit in SQLite's signed INTEGER.
func recordValues(r *interfaces.TransferRecord) []any {
	return []any{
		r.TransferID,
		int64(r.MessageID),
		r.ChatID,
		r.PeerPublicKey,
		int64(r.GroupID),
		boolToInt(r.IsGroup),
		r.Handle,
		int64(r.Kind),
		boolToInt(r.Outgoing),
		string(r.Status),
		int64(r.Size),
		r.FileName,
		r.FilePath,
		string(r.PausedBy),
		boolToInt(r.Opened),
		boolToInt(r.Offline),
		boolToInt(r.Expired),
		r.Duration,
		r.CreatedAt.UnixMilli(),
		r.UpdatedAt.UnixMilli(),
	}
}

func scanRecord(row scanner) (*interfaces.TransferRecord, error) {
	var record interfaces.TransferRecord
	var messageID, groupID, kind, size, createdAt, updatedAt int64
	var isGroup, outgoing, opened, offline, expired int64
	var status, pausedBy string
	if err := row.Scan(
		&record.TransferID,
		&messageID,
		&record.ChatID,
		&record.PeerPublicKey,
		&groupID,
		&isGroup,
		&record.Handle,
		&kind,
		&outgoing,
		&status,
		&size,
		&record.FileName,
		&record.FilePath,
		&pausedBy,
		&opened,
		&offline,
		&expired,
		&record.Duration,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	record.MessageID = uint64(messageID)
	record.GroupID = uint64(groupID)
	record.IsGroup = isGroup != 0
	record.Kind = interfaces.FileKind(kind)
	record.Outgoing = outgoing != 0
	record.Status = interfaces.RecordStatus(status)
	record.Size = uint64(size)
	record.PausedBy = interfaces.PausedBy(pausedBy)
	record.Opened = opened != 0
	record.Offline = offline != 0
	record.Expired = expired != 0
	record.CreatedAt = time.UnixMilli(createdAt).UTC()
	record.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &record, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
