package storage

import (
	"encoding/json"
	"errors"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeSnapshot(s RunSnapshot) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeSnapshot(data []byte) (RunSnapshot, error) {
	var snapshot RunSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return RunSnapshot{}, err
	}
	if err := checkVersion(snapshot.VersionedRecord); err != nil {
		return RunSnapshot{}, err
	}
	return snapshot, nil
}

func EncodeCounters(c Counters) ([]byte, error) {
	return json.Marshal(c)
}

func DecodeCounters(data []byte) (Counters, error) {
	var counters Counters
	if err := json.Unmarshal(data, &counters); err != nil {
		return Counters{}, err
	}
	return counters, nil
}

func checkVersion(v VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
