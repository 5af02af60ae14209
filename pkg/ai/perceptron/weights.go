package perceptron

import (
	"archive/zip"
	"encoding"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
)

// Entry names inside the weights archive.
const (
	entryInputHidden  = "weights_input_hidden"
	entryHiddenOutput = "weights_hidden_output"
	entryBiasHidden   = "bias_hidden"
	entryBiasOutput   = "bias_output"
)

// ErrNoArtifact means no trained weights exist at the requested path.
var ErrNoArtifact = errors.New("no trained weights")

// Save writes n to path as a zip archive of the four gonum-encoded tensors.
// The file is written next to path and renamed into place.
func Save(path string, n *Network) (err error) {
	if err := n.Validate(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create weights dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".weights-*")
	if err != nil {
		return fmt.Errorf("create temp weights: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	zw := zip.NewWriter(tmp)
	entries := []struct {
		name string
		m    encoding.BinaryMarshaler
	}{
		{entryInputHidden, n.WeightsInputHidden},
		{entryHiddenOutput, n.WeightsHiddenOutput},
		{entryBiasHidden, n.BiasHidden},
		{entryBiasOutput, n.BiasOutput},
	}
	for _, e := range entries {
		data, err := e.m.MarshalBinary()
		if err != nil {
			return fmt.Errorf("encode %s: %w", e.name, err)
		}
		w, err := zw.Create(e.name)
		if err != nil {
			return fmt.Errorf("write %s: %w", e.name, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish weights archive: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync weights: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close weights: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move weights into place: %w", err)
	}
	return nil
}

// Load reads a network written by Save. A missing file reports ErrNoArtifact.
func Load(path string) (*Network, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNoArtifact)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open weights: %w", err)
	}
	defer zr.Close()

	raw := make(map[string][]byte, 4)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		raw[f.Name] = data
	}

	n := &Network{
		WeightsInputHidden:  &mat.Dense{},
		WeightsHiddenOutput: &mat.Dense{},
		BiasHidden:          &mat.VecDense{},
		BiasOutput:          &mat.VecDense{},
	}
	targets := []struct {
		name string
		u    encoding.BinaryUnmarshaler
	}{
		{entryInputHidden, n.WeightsInputHidden},
		{entryHiddenOutput, n.WeightsHiddenOutput},
		{entryBiasHidden, n.BiasHidden},
		{entryBiasOutput, n.BiasOutput},
	}
	for _, t := range targets {
		data, ok := raw[t.name]
		if !ok {
			return nil, fmt.Errorf("weights archive has no %s", t.name)
		}
		if err := t.u.UnmarshalBinary(data); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t.name, err)
		}
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}
