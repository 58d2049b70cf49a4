package reservationrepo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"library/model"
)

func TestBuildListQuery_NoFilter(t *testing.T) {
	q, args, err := buildListQuery(Filter{})
	require.NoError(t, err)
	require.Empty(t, args)
	require.Contains(t, q, `FROM "reservations" AS "r"`)
	require.Contains(t, q, `INNER JOIN "users" AS "u"`)
	require.Contains(t, q, `INNER JOIN "books" AS "b"`)
	require.NotContains(t, q, "WHERE")
	require.Contains(t, q, `ORDER BY "r"."id" ASC`)
}

func TestBuildListQuery_ByUserAndStatus(t *testing.T) {
	uid := int64(1)
	q, args, err := buildListQuery(Filter{UserID: &uid, Status: model.ReservationActive})
	require.NoError(t, err)
	require.Contains(t, q, `"r"."user_id" = $1`)
	require.Contains(t, q, `"r"."status" = $2`)
	require.Equal(t, []any{int64(1), "ACTIVE"}, args)
}

func TestBuildListQuery_Overdue(t *testing.T) {
	asOf := time.Date(2025, time.March, 10, 15, 4, 5, 0, time.UTC)
	q, args, err := buildListQuery(Filter{Status: model.ReservationActive, DueBefore: &asOf})
	require.NoError(t, err)
	require.Contains(t, q, `"r"."status" = $1`)
	require.Contains(t, q, `"r"."expected_return_date" < $2`)
	require.Len(t, args, 2)
	require.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), args[1])
}

func TestBuildByIDQuery_Lock(t *testing.T) {
	q, args, err := buildByIDQuery(42, true)
	require.NoError(t, err)
	require.Contains(t, q, `"r"."id" = $1`)
	require.Contains(t, q, `FOR UPDATE OF "r"`)
	require.Equal(t, []any{int64(42)}, args)

	q, _, err = buildByIDQuery(42, false)
	require.NoError(t, err)
	require.NotContains(t, q, "FOR UPDATE")
}
