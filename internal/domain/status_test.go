package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	cases := map[string]Status{
		"New":                               StatusNew,
		"new":                               StatusNew,
		"lead":                              StatusNew,
		"Block A":                           StatusBlockA,
		"block_a":                           StatusBlockA,
		"pending":                           StatusBlockA,
		"design":                            StatusDesign,
		"PRICING":                           StatusQuoting,
		"Awaiting Deposit":                  StatusAwaitingDeposit,
		"PROPOSAL SENT - AWAITING CUSTOMER": StatusAwaitingDeposit,
		"CONFIRMED":                         StatusConfirmed,
		"ACTIVE PRODUCTION":                 StatusActiveProduction,
		"in_production":                     StatusActiveProduction,
		"permit_pending":                    StatusPermitPending,
		"invoiced":                          StatusCompleted,
		"Closed - Won":                      StatusClosedWon,
		"closed_-_won":                      StatusClosedWon,
		"CLOSED-LOST":                       StatusClosedLost,
		" Archived ":                        StatusArchived,
		"MIGRATED":                          StatusMigrated,
		"Block B":                           StatusDesign,
		"Block C":                           StatusQuoting,
		"Block D":                           StatusAwaitingDeposit,
		"Block E":                           StatusActiveProduction,
		"block-f":                           StatusActiveProduction,
		"Block G":                           StatusCompleted,
		"info_gathering":                    StatusBlockA,
		"on_hold":                           StatusBlockA,
		"proposal_sent":                     StatusAwaitingDeposit,
		"awaiting":                          StatusAwaitingDeposit,
		"cancelled":                         StatusClosedLost,
	}
	for raw, want := range cases {
		got, err := Canonicalize(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestCanonicalize_RejectsUnknown(t *testing.T) {
	for _, raw := range []string{"", "Block H", "qoting", "hold"} {
		_, err := Canonicalize(raw)
		assert.ErrorIs(t, err, ErrUnknownStatus, raw)
	}
}

func TestCanonicalize_RoundTripsEveryStatus(t *testing.T) {
	for _, s := range AllStatuses {
		got, err := Canonicalize(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestStatus_ScanAndValue(t *testing.T) {
	var s Status
	require.NoError(t, s.Scan("closed_-_lost"))
	assert.Equal(t, StatusClosedLost, s)

	require.NoError(t, s.Scan([]byte("active production")))
	assert.Equal(t, StatusActiveProduction, s)

	require.NoError(t, s.Scan("mystery"))
	assert.Equal(t, Status("mystery"), s)
	assert.False(t, s.Valid())
	_, err := s.Value()
	assert.ErrorIs(t, err, ErrUnknownStatus)

	v, err := StatusDesign.Value()
	require.NoError(t, err)
	assert.Equal(t, "Design", v)

	_, err = Status("design").Value()
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestStatus_Sets(t *testing.T) {
	assert.True(t, StatusCompleted.Closed())
	assert.True(t, StatusArchived.Closed())
	assert.False(t, StatusConfirmed.Closed())
	assert.True(t, StatusPermitPending.InProduction())
	assert.False(t, StatusAwaitingDeposit.InProduction())
	assert.Equal(t, "Won", StatusClosedWon.Badge().Label)
}

func TestSplitUnknownStatus(t *testing.T) {
	rows := []Project{{ClientName: "a", Status: StatusNew}, {ClientName: "b", Status: Status("mystery")}, {ClientName: "c", Status: StatusDesign}}
	known, flagged := SplitUnknownStatus(rows)
	require.Len(t, known, 2)
	assert.Equal(t, "a", known[0].ClientName)
	assert.Equal(t, "c", known[1].ClientName)
	require.Len(t, flagged, 1)
	assert.Equal(t, "b", flagged[0].ClientName)
}
