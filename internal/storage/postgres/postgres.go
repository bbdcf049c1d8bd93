package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wellness-scheduler/internal/models"
	"wellness-scheduler/internal/service"
	"wellness-scheduler/internal/storage"
	"wellness-scheduler/pkg/response"

	"github.com/lib/pq"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *Storage) BeginTx(ctx context.Context) (storage.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// runner picks the transaction when one was handed in, the pool otherwise.
func (s *Storage) runner(tx storage.Tx) querier {
	if tx == nil {
		return s.db
	}
	return tx.(*sql.Tx)
}

// #### slots ####

func (s *Storage) CreateSlot(ctx context.Context, tx storage.Tx, slot *models.Slot) (string, bool, error) {
	const op = "storage.postgres.CreateSlot"

	var id string
	err := s.runner(tx).QueryRowContext(ctx,
		`INSERT INTO slots (psychologist_id, time_slot, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (psychologist_id, time_slot) DO NOTHING
		RETURNING id`,
		slot.PsychologistID,
		slot.TimeSlot,
		string(slot.Status),
	).Scan(&id)

	if err != nil {
		if err == sql.ErrNoRows {
			// Conflict: a slot already exists at this timestamp.
			return "", false, nil
		}
		return "", false, fmt.Errorf("%s: %w", op, err)
	}

	return id, true, nil
}

func (s *Storage) GetSlot(ctx context.Context, id string) (*models.Slot, error) {
	const op = "storage.postgres.GetSlot"

	var slot models.Slot
	err := s.db.QueryRowContext(ctx,
		`SELECT id, psychologist_id, time_slot, status FROM slots WHERE id=$1`, id).
		Scan(&slot.ID, &slot.PsychologistID, &slot.TimeSlot, &slot.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &slot, nil
}

func (s *Storage) GetSlotByTime(ctx context.Context, psychologistID string, at time.Time) (*models.Slot, error) {
	const op = "storage.postgres.GetSlotByTime"

	var slot models.Slot
	err := s.db.QueryRowContext(ctx,
		`SELECT id, psychologist_id, time_slot, status
		FROM slots WHERE psychologist_id=$1 AND time_slot=$2`,
		psychologistID, at).
		Scan(&slot.ID, &slot.PsychologistID, &slot.TimeSlot, &slot.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &slot, nil
}

func (s *Storage) ListSlots(ctx context.Context, psychologistID string, from, to *time.Time) ([]*models.Slot, error) {
	const op = "storage.postgres.ListSlots"

	query := `SELECT id, psychologist_id, time_slot, status FROM slots WHERE psychologist_id=$1`
	args := []any{psychologistID}

	if from != nil {
		args = append(args, *from)
		query += ` AND time_slot >= $` + strconv.Itoa(len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += ` AND time_slot < $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY time_slot`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var slots []*models.Slot
	for rows.Next() {
		var slot models.Slot
		if err := rows.Scan(&slot.ID, &slot.PsychologistID, &slot.TimeSlot, &slot.Status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		slots = append(slots, &slot)
	}

	return slots, rows.Err()
}

// TransitionSlot is the compare-and-set primitive behind every occupancy
// change: the update applies only when the slot still holds the expected
// status.
func (s *Storage) TransitionSlot(ctx context.Context, tx storage.Tx, slotID string, from, to models.SlotStatus) error {
	const op = "storage.postgres.TransitionSlot"

	res, err := s.runner(tx).ExecContext(ctx,
		`UPDATE slots SET status=$1 WHERE id=$2 AND status=$3`,
		string(to), slotID, string(from))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrConflict)
	}

	return nil
}

func (s *Storage) ToggleDay(ctx context.Context, psychologistID string, day time.Time, status models.SlotStatus) (int, error) {
	const op = "storage.postgres.ToggleDay"

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var booked int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM slots
		WHERE psychologist_id=$1 AND time_slot >= $2 AND time_slot < $3 AND status=$4`,
		psychologistID, dayStart, dayEnd, string(models.SlotBooked)).
		Scan(&booked)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if booked > 0 {
		return 0, fmt.Errorf("%s: %w", op, response.ErrSlotBooked)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE slots SET status=$1
		WHERE psychologist_id=$2 AND time_slot >= $3 AND time_slot < $4`,
		string(status), psychologistID, dayStart, dayEnd)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", op, err)
	}

	return int(n), nil
}

func (s *Storage) CountBookedSlots(ctx context.Context, psychologistID string, from, to time.Time) (int, error) {
	const op = "storage.postgres.CountBookedSlots"

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM slots
		WHERE psychologist_id=$1 AND time_slot >= $2 AND time_slot < $3 AND status=$4`,
		psychologistID, from, to, string(models.SlotBooked)).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

// #### bookings ####

func (s *Storage) CreateBooking(ctx context.Context, tx storage.Tx, booking *models.Booking) (string, error) {
	const op = "storage.postgres.CreateBooking"

	var id string
	err := s.runner(tx).QueryRowContext(ctx,
		`INSERT INTO bookings
		(client_id, psychologist_id, time_slot, session_type, status, notes, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		booking.ClientID,
		booking.PsychologistID,
		booking.TimeSlot,
		string(booking.SessionType),
		string(booking.Status),
		booking.Notes,
		booking.IdempotencyKey,
	).Scan(&id)

	if err != nil {
		sqlErr, ok := err.(*pq.Error)
		if ok && sqlErr.Code == "23505" {
			return "", fmt.Errorf("%s: %w", op, response.ErrConflict)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) scanBooking(row *sql.Row) (*models.Booking, error) {
	var booking models.Booking
	var notes, reason sql.NullString
	err := row.Scan(
		&booking.ID,
		&booking.ClientID,
		&booking.PsychologistID,
		&booking.TimeSlot,
		&booking.SessionType,
		&booking.Status,
		&notes,
		&reason,
	)
	if err != nil {
		return nil, err
	}
	booking.Notes = notes.String
	booking.CancelReason = reason.String
	return &booking, nil
}

func (s *Storage) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	const op = "storage.postgres.GetBooking"

	booking, err := s.scanBooking(s.db.QueryRowContext(ctx,
		`SELECT id, client_id, psychologist_id, time_slot, session_type, status, notes, cancel_reason
		FROM bookings WHERE id=$1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return booking, nil
}

func (s *Storage) GetBookingByIdempotencyKey(ctx context.Context, key string) (*models.Booking, error) {
	const op = "storage.postgres.GetBookingByIdempotencyKey"

	booking, err := s.scanBooking(s.db.QueryRowContext(ctx,
		`SELECT id, client_id, psychologist_id, time_slot, session_type, status, notes, cancel_reason
		FROM bookings WHERE idempotency_key=$1`, key))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return booking, nil
}

func (s *Storage) ListBookings(ctx context.Context, filters *service.BookingFilters) ([]*models.Booking, error) {
	const op = "storage.postgres.ListBookings"

	query := `SELECT id, client_id, psychologist_id, time_slot, session_type, status, notes, cancel_reason
	FROM bookings WHERE 1=1`
	var args []any

	add := func(clause string, arg any) {
		args = append(args, arg)
		query += " AND " + strings.Replace(clause, "?", "$"+strconv.Itoa(len(args)), 1)
	}

	if filters != nil {
		if filters.ClientID != nil {
			add(`client_id = ?`, *filters.ClientID)
		}
		if filters.PsychologistID != nil {
			add(`psychologist_id = ?`, *filters.PsychologistID)
		}
		if filters.Status != nil {
			add(`status = ?`, string(*filters.Status))
		}
		if filters.From != nil {
			add(`time_slot >= ?`, *filters.From)
		}
		if filters.To != nil {
			add(`time_slot < ?`, *filters.To)
		}
	}
	query += ` ORDER BY time_slot`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		var booking models.Booking
		var notes, reason sql.NullString
		err := rows.Scan(
			&booking.ID,
			&booking.ClientID,
			&booking.PsychologistID,
			&booking.TimeSlot,
			&booking.SessionType,
			&booking.Status,
			&notes,
			&reason,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		booking.Notes = notes.String
		booking.CancelReason = reason.String
		bookings = append(bookings, &booking)
	}

	return bookings, rows.Err()
}

func (s *Storage) TransitionBooking(ctx context.Context, tx storage.Tx, bookingID string, to models.BookingStatus, reason string, from ...models.BookingStatus) error {
	const op = "storage.postgres.TransitionBooking"

	fromStatuses := make([]string, 0, len(from))
	for _, st := range from {
		fromStatuses = append(fromStatuses, string(st))
	}

	res, err := s.runner(tx).ExecContext(ctx,
		`UPDATE bookings
		SET status=$1, cancel_reason = CASE WHEN $2 <> '' THEN $2 ELSE cancel_reason END
		WHERE id=$3 AND status = ANY($4)`,
		string(to), reason, bookingID, pq.Array(fromStatuses))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrConflict)
	}

	return nil
}

func (s *Storage) RepointBooking(ctx context.Context, tx storage.Tx, bookingID, psychologistID string, at time.Time) error {
	const op = "storage.postgres.RepointBooking"

	res, err := s.runner(tx).ExecContext(ctx,
		`UPDATE bookings SET psychologist_id=$1, time_slot=$2 WHERE id=$3`,
		psychologistID, at, bookingID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

// #### holidays ####

func (s *Storage) CreateHoliday(ctx context.Context, holiday *models.Holiday) (string, error) {
	const op = "storage.postgres.CreateHoliday"

	var id string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO holidays (holiday_date, description, recurring_annually, is_active, location)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		holiday.Date,
		holiday.Description,
		holiday.RecurringAnnually,
		holiday.IsActive,
		holiday.Location,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetHoliday(ctx context.Context, id string) (*models.Holiday, error) {
	const op = "storage.postgres.GetHoliday"

	var holiday models.Holiday
	err := s.db.QueryRowContext(ctx,
		`SELECT id, holiday_date, description, recurring_annually, is_active, location
		FROM holidays WHERE id=$1`, id).
		Scan(&holiday.ID, &holiday.Date, &holiday.Description,
			&holiday.RecurringAnnually, &holiday.IsActive, &holiday.Location)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &holiday, nil
}

func (s *Storage) DeleteHoliday(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteHoliday"

	res, err := s.db.ExecContext(ctx, `DELETE FROM holidays WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) holidayRows(ctx context.Context, query string, args ...any) ([]*models.Holiday, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []*models.Holiday
	for rows.Next() {
		var holiday models.Holiday
		err := rows.Scan(&holiday.ID, &holiday.Date, &holiday.Description,
			&holiday.RecurringAnnually, &holiday.IsActive, &holiday.Location)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, &holiday)
	}

	return holidays, rows.Err()
}

func (s *Storage) ListHolidays(ctx context.Context) ([]*models.Holiday, error) {
	const op = "storage.postgres.ListHolidays"

	holidays, err := s.holidayRows(ctx,
		`SELECT id, holiday_date, description, recurring_annually, is_active, location
		FROM holidays ORDER BY holiday_date`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return holidays, nil
}

// ListHolidaysByDate returns every row matching the day, inactive ones
// included, so an inactive entry can override the fallback table.
func (s *Storage) ListHolidaysByDate(ctx context.Context, date time.Time) ([]*models.Holiday, error) {
	const op = "storage.postgres.ListHolidaysByDate"

	holidays, err := s.holidayRows(ctx,
		`SELECT id, holiday_date, description, recurring_annually, is_active, location
		FROM holidays
		WHERE holiday_date = $1::date
		OR (recurring_annually
			AND EXTRACT(MONTH FROM holiday_date) = EXTRACT(MONTH FROM $1::date)
			AND EXTRACT(DAY FROM holiday_date) = EXTRACT(DAY FROM $1::date))`,
		date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return holidays, nil
}

// #### booking limits ####

func (s *Storage) GetBookingLimit(ctx context.Context, psychologistID string) (*models.BookingLimit, error) {
	const op = "storage.postgres.GetBookingLimit"

	var limit models.BookingLimit
	err := s.db.QueryRowContext(ctx,
		`SELECT psychologist_id, weekly_limit, monthly_limit
		FROM booking_limits WHERE psychologist_id=$1`, psychologistID).
		Scan(&limit.PsychologistID, &limit.WeeklyLimit, &limit.MonthlyLimit)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &limit, nil
}

func (s *Storage) UpsertBookingLimit(ctx context.Context, limit *models.BookingLimit) error {
	const op = "storage.postgres.UpsertBookingLimit"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO booking_limits (psychologist_id, weekly_limit, monthly_limit)
		VALUES ($1, $2, $3)
		ON CONFLICT (psychologist_id)
		DO UPDATE SET weekly_limit = EXCLUDED.weekly_limit,
			monthly_limit = EXCLUDED.monthly_limit`,
		limit.PsychologistID, limit.WeeklyLimit, limit.MonthlyLimit)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
