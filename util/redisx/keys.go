package redisx

import (
	"fmt"
	"time"
)

const (
	// Overdue notice sent: dedup:overdue:{reservation_id}:{yyyy-mm-dd}
	KeyOverdueNotice = "dedup:overdue:%d:%s"
)

var TTLOverdueNotice = 24 * time.Hour

func OverdueNoticeKey(reservationID int64, day time.Time) string {
	return fmt.Sprintf(KeyOverdueNotice, reservationID, day.Format(time.DateOnly))
}
