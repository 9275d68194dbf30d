package tmcmc

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"
)

// MarshalBinary encodes the full stage history as a self-describing byte
// slice: a stage count followed by, per stage, the sample matrix encoded
// with (*mat.Dense).MarshalBinary (which is itself self-describing) and the
// length-prefixed LogL/LogTarget slices and Beta/LogZInc scalars. This has
// no opinion on where the bytes are written; that remains an external
// caller's concern.
func (r Run) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, uint64(len(r))); err != nil {
		return nil, err
	}
	for i, stage := range r {
		samplesBytes, err := stage.Samples.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("tmcmc: marshal stage %d samples: %w", i, err)
		}
		if err := writeLengthPrefixed(&buf, samplesBytes); err != nil {
			return nil, err
		}
		if err := writeFloat64Slice(&buf, stage.LogL); err != nil {
			return nil, err
		}
		if err := writeFloat64Slice(&buf, stage.LogTarget); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.LittleEndian, stage.Beta); err != nil {
			return nil, err
		}
		if err := binary.Write(&buf, binary.LittleEndian, stage.LogZInc); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a byte slice produced by MarshalBinary into r,
// replacing its contents.
func (r *Run) UnmarshalBinary(data []byte) error {
	buf := bytes.NewReader(data)
	var count uint64
	if err := binary.Read(buf, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("tmcmc: read stage count: %w", err)
	}

	stages := make(Run, count)
	for i := range stages {
		samplesBytes, err := readLengthPrefixed(buf)
		if err != nil {
			return fmt.Errorf("tmcmc: read stage %d samples: %w", i, err)
		}
		var samples mat.Dense
		if err := samples.UnmarshalBinary(samplesBytes); err != nil {
			return fmt.Errorf("tmcmc: unmarshal stage %d samples: %w", i, err)
		}

		logL, err := readFloat64Slice(buf)
		if err != nil {
			return fmt.Errorf("tmcmc: read stage %d logL: %w", i, err)
		}
		logTarget, err := readFloat64Slice(buf)
		if err != nil {
			return fmt.Errorf("tmcmc: read stage %d logTarget: %w", i, err)
		}

		var beta, logZInc float64
		if err := binary.Read(buf, binary.LittleEndian, &beta); err != nil {
			return fmt.Errorf("tmcmc: read stage %d beta: %w", i, err)
		}
		if err := binary.Read(buf, binary.LittleEndian, &logZInc); err != nil {
			return fmt.Errorf("tmcmc: read stage %d logZInc: %w", i, err)
		}

		stages[i] = StageRecord{
			Samples:   &samples,
			LogL:      logL,
			LogTarget: logTarget,
			Beta:      beta,
			LogZInc:   logZInc,
		}
	}

	*r = stages
	return nil
}

func writeLengthPrefixed(buf *bytes.Buffer, data []byte) error {
	if err := binary.Write(buf, binary.LittleEndian, uint64(len(data))); err != nil {
		return err
	}
	_, err := buf.Write(data)
	return err
}

func readLengthPrefixed(buf *bytes.Reader) ([]byte, error) {
	var n uint64
	if err := binary.Read(buf, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(buf, data); err != nil {
		return nil, err
	}
	return data, nil
}

func writeFloat64Slice(buf *bytes.Buffer, s []float64) error {
	if err := binary.Write(buf, binary.LittleEndian, uint64(len(s))); err != nil {
		return err
	}
	return binary.Write(buf, binary.LittleEndian, s)
}

func readFloat64Slice(buf *bytes.Reader) ([]float64, error) {
	var n uint64
	if err := binary.Read(buf, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	s := make([]float64, n)
	if err := binary.Read(buf, binary.LittleEndian, s); err != nil {
		return nil, err
	}
	return s, nil
}

// jsonStage is the human-readable form of a stage, used only by
// MarshalJSON/UnmarshalJSON for debugging and golden-file tests.
type jsonStage struct {
	Samples   [][]float64 `json:"samples"`
	LogL      []float64   `json:"log_likelihood"`
	LogTarget []float64   `json:"log_target_density"`
	Beta      float64     `json:"beta"`
	LogZInc   float64     `json:"log_evidence_increment"`
}

// MarshalJSON renders the run as nested arrays, for debugging and
// golden-file tests; MarshalBinary is the compact, round-trip-exact form.
func (r Run) MarshalJSON() ([]byte, error) {
	out := make([]jsonStage, len(r))
	for i, stage := range r {
		n, d := stage.Samples.Dims()
		rows := make([][]float64, n)
		for row := 0; row < n; row++ {
			rows[row] = make([]float64, d)
			for col := 0; col < d; col++ {
				rows[row][col] = stage.Samples.At(row, col)
			}
		}
		out[i] = jsonStage{
			Samples:   rows,
			LogL:      stage.LogL,
			LogTarget: stage.LogTarget,
			Beta:      stage.Beta,
			LogZInc:   stage.LogZInc,
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *Run) UnmarshalJSON(data []byte) error {
	var in []jsonStage
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	stages := make(Run, len(in))
	for i, s := range in {
		n := len(s.Samples)
		d := 0
		if n > 0 {
			d = len(s.Samples[0])
		}
		samples := mat.NewDense(n, d, nil)
		for row := 0; row < n; row++ {
			samples.SetRow(row, s.Samples[row])
		}
		stages[i] = StageRecord{
			Samples:   samples,
			LogL:      s.LogL,
			LogTarget: s.LogTarget,
			Beta:      s.Beta,
			LogZInc:   s.LogZInc,
		}
	}
	*r = stages
	return nil
}
