package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/sheikh-saqib/transaction-processing-engine/internal/models"
)

// WriteSnapshots renders the final account table as CSV. Callers pass the
// snapshots already ordered (the account store sorts by client id).
func WriteSnapshots(w io.Writer, snapshots []models.AccountSnapshot) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return err
	}
	for _, s := range snapshots {
		record := []string{
			strconv.FormatUint(uint64(s.ClientID), 10),
			s.Available.String(),
			s.Held.String(),
			s.Total.String(),
			strconv.FormatBool(s.Locked),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
