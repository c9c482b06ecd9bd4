package solid

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/DataDog/zstd"

	"github.com/dylanagius/karamelo/grid"
	"github.com/dylanagius/karamelo/mathkit"
	"github.com/dylanagius/karamelo/simerr"
)

// restartMagic tags the compressed payload so ReadRestart can reject a
// file written by something else before it gets far enough to corrupt
// anything.
const restartMagic uint32 = 0x4b4d504d // "KMPM"

// WriteRestart serialises every field spec.md §6 names for restart
// round-tripping — ptag, x0, x, v, F, sigma, strain_el,
// eff_plastic_strain, eff_plastic_strain_rate, damage, damage_init, mass,
// vol0 — as a flat little-endian binary blob, then zstd-compresses the
// whole blob in one shot and writes it to w. This reuses
// `phil-mansfield-guppy/lib/compress/compress.go`'s "encode typed arrays
// with encoding/binary, then zstd.CompressLevel the byte buffer" primitive
// directly; guppy's delta/quantization pipeline on top of that (Lagrangian
// ID-ordered halo snapshots) has no analogue here, since particle order
// has no spatial locality this solver could exploit the same way.
func (p *Particles) WriteRestart(w io.Writer) error {
	var raw bytes.Buffer
	enc := binary.Write
	order := binary.LittleEndian

	if err := enc(&raw, order, restartMagic); err != nil {
		return restartIOErr(err)
	}
	if err := enc(&raw, order, int64(p.N)); err != nil {
		return restartIOErr(err)
	}
	if err := enc(&raw, order, int64(p.Dim)); err != nil {
		return restartIOErr(err)
	}

	writers := []func() error{
		func() error { return writeInt64Slice(&raw, order, p.PTag) },
		func() error { return writeVec3Slice(&raw, order, p.X0) },
		func() error { return writeVec3Slice(&raw, order, p.X) },
		func() error { return writeVec3Slice(&raw, order, p.V) },
		func() error { return writeMat3Slice(&raw, order, p.Fgrad) },
		func() error { return writeMat3Slice(&raw, order, p.Sigma) },
		func() error { return writeMat3Slice(&raw, order, p.StrainEl) },
		func() error { return writeFloat64Slice(&raw, order, p.EffPlasticStrain) },
		func() error { return writeFloat64Slice(&raw, order, p.EffPlasticStrainRate) },
		func() error { return writeFloat64Slice(&raw, order, p.Damage) },
		func() error { return writeFloat64Slice(&raw, order, p.DamageInit) },
		func() error { return writeFloat64Slice(&raw, order, p.Mass) },
		func() error { return writeFloat64Slice(&raw, order, p.Vol0) },
	}
	for _, wr := range writers {
		if err := wr(); err != nil {
			return restartIOErr(err)
		}
	}

	compressed, err := zstd.CompressLevel(nil, raw.Bytes(), 9)
	if err != nil {
		return restartIOErr(err)
	}
	if err := enc(w, order, int64(len(compressed))); err != nil {
		return restartIOErr(err)
	}
	if _, err := w.Write(compressed); err != nil {
		return restartIOErr(err)
	}
	return nil
}

// ReadRestart replaces p's contents with a snapshot previously written by
// WriteRestart.
func (p *Particles) ReadRestart(r io.Reader) error {
	order := binary.LittleEndian
	var compressedLen int64
	if err := binary.Read(r, order, &compressedLen); err != nil {
		return restartIOErr(err)
	}
	compressed := make([]byte, compressedLen)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return restartIOErr(err)
	}
	raw, err := zstd.Decompress(nil, compressed)
	if err != nil {
		return restartIOErr(err)
	}
	buf := bytes.NewReader(raw)

	var magic uint32
	if err := binary.Read(buf, order, &magic); err != nil {
		return restartIOErr(err)
	}
	if magic != restartMagic {
		return &simerr.Error{Kind: simerr.IOError, Message: "restart file has the wrong magic number"}
	}
	var n64, dim64 int64
	if err := binary.Read(buf, order, &n64); err != nil {
		return restartIOErr(err)
	}
	if err := binary.Read(buf, order, &dim64); err != nil {
		return restartIOErr(err)
	}
	p.Grow(int(n64), int(dim64))

	readers := []func() error{
		func() error { return readInt64Slice(buf, order, p.PTag) },
		func() error { return readVec3Slice(buf, order, p.X0) },
		func() error { return readVec3Slice(buf, order, p.X) },
		func() error { return readVec3Slice(buf, order, p.V) },
		func() error { return readMat3Slice(buf, order, p.Fgrad) },
		func() error { return readMat3Slice(buf, order, p.Sigma) },
		func() error { return readMat3Slice(buf, order, p.StrainEl) },
		func() error { return readFloat64Slice(buf, order, p.EffPlasticStrain) },
		func() error { return readFloat64Slice(buf, order, p.EffPlasticStrainRate) },
		func() error { return readFloat64Slice(buf, order, p.Damage) },
		func() error { return readFloat64Slice(buf, order, p.DamageInit) },
		func() error { return readFloat64Slice(buf, order, p.Mass) },
		func() error { return readFloat64Slice(buf, order, p.Vol0) },
	}
	for _, rd := range readers {
		if err := rd(); err != nil {
			return restartIOErr(err)
		}
	}
	return nil
}

func restartIOErr(err error) error {
	return &simerr.Error{Kind: simerr.IOError, Message: "restart: " + err.Error()}
}

func writeInt64Slice(w io.Writer, order binary.ByteOrder, s []int64) error {
	return binary.Write(w, order, s)
}

func readInt64Slice(r io.Reader, order binary.ByteOrder, s []int64) error {
	return binary.Read(r, order, s)
}

func writeFloat64Slice(w io.Writer, order binary.ByteOrder, s []float64) error {
	return binary.Write(w, order, s)
}

func readFloat64Slice(r io.Reader, order binary.ByteOrder, s []float64) error {
	return binary.Read(r, order, s)
}

func writeVec3Slice(w io.Writer, order binary.ByteOrder, s []grid.Vec3) error {
	for _, v := range s {
		if err := binary.Write(w, order, v); err != nil {
			return err
		}
	}
	return nil
}

func readVec3Slice(r io.Reader, order binary.ByteOrder, s []grid.Vec3) error {
	for i := range s {
		if err := binary.Read(r, order, &s[i]); err != nil {
			return err
		}
	}
	return nil
}

func writeMat3Slice(w io.Writer, order binary.ByteOrder, s []mathkit.Mat3) error {
	for _, m := range s {
		if err := binary.Write(w, order, m); err != nil {
			return err
		}
	}
	return nil
}

func readMat3Slice(r io.Reader, order binary.ByteOrder, s []mathkit.Mat3) error {
	for i := range s {
		if err := binary.Read(r, order, &s[i]); err != nil {
			return err
		}
	}
	return nil
}
