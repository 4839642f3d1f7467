package storage

import (
	"encoding/json"
	"errors"

	"ennead/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeRun(run model.RunSummary) ([]byte, error) {
	return json.Marshal(run)
}

func DecodeRun(data []byte) (model.RunSummary, error) {
	var run model.RunSummary
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunSummary{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunSummary{}, err
	}
	return run, nil
}

func EncodeRoundDiagnostics(diagnostics []model.RoundDiagnostics) ([]byte, error) {
	return json.Marshal(diagnostics)
}

func DecodeRoundDiagnostics(data []byte) ([]model.RoundDiagnostics, error) {
	var diagnostics []model.RoundDiagnostics
	if err := json.Unmarshal(data, &diagnostics); err != nil {
		return nil, err
	}
	return diagnostics, nil
}

func checkVersion(record model.VersionedRecord) error {
	if record.SchemaVersion > CurrentSchemaVersion || record.CodecVersion > CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
