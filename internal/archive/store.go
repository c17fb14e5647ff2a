package archive

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/clipperdesk/clipperdesk/internal/timeclock"
	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

// S3API is the subset of the S3 client used by Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store archives timesheet exports to S3 for payroll and record keeping.
type Store struct {
	bucket   string
	s3Client S3API
	logger   *logging.Logger
}

// NewStore creates an archive Store. If bucket is empty, all operations are no-ops.
func NewStore(s3Client S3API, bucket string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{bucket: bucket, s3Client: s3Client, logger: logger}
}

// Enabled returns true if archival is configured (bucket is set).
func (s *Store) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// ExportTimesheet writes the day's summaries as CSV to S3 and returns the key.
func (s *Store) ExportTimesheet(ctx context.Context, day time.Time, summaries []timeclock.DailySummary) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	data, err := timesheetCSV(summaries)
	if err != nil {
		return "", fmt.Errorf("archive: build csv: %w", err)
	}

	s3Key := fmt.Sprintf("timesheets/v1/by-date/%d/%02d/%02d.csv",
		day.Year(), day.Month(), day.Day())

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s3Key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("archive: s3 put %s: %w", s3Key, err)
	}

	s.logger.Info("timesheet exported to S3",
		"s3_key", s3Key,
		"date", day.Format("2006-01-02"),
		"barbers", len(summaries),
	)
	return s3Key, nil
}

func timesheetCSV(summaries []timeclock.DailySummary) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"date", "barber_id", "barber_name", "total_hours", "break_hours", "net_hours", "status", "anomaly", "entry_count"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, sum := range summaries {
		row := []string{
			sum.Date,
			sum.BarberID,
			sum.BarberName,
			strconv.FormatFloat(sum.TotalHours, 'f', 2, 64),
			strconv.FormatFloat(sum.BreakHours, 'f', 2, 64),
			strconv.FormatFloat(sum.NetHours, 'f', 2, 64),
			string(sum.Status),
			sum.Anomaly,
			strconv.Itoa(sum.EntryCount),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
