package patientstore

import (
	"fmt"
	"strconv"
)

func parsePatientID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPatientID, s)
	}
	return id, nil
}
