// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package export

import (
	"io"
	"math"

	"github.com/db47h/sigtrace"
	"github.com/db47h/sigtrace/convert"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

// WAV output parameters.
//
const (
	SampleRate = 44100
	BitDepth   = 16
)

// amplitude of a high level, leaving some headroom.
const amplitude = 1<<(BitDepth-1) - 1<<(BitDepth-4)

func writeWAV(ws io.WriteSeeker, chans int, data []int) error {
	enc := wav.NewEncoder(ws, SampleRate, BitDepth, chans, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: chans, SampleRate: SampleRate},
		Data:           data,
		SourceBitDepth: BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return errors.Wrap(err, "wav")
	}
	return errors.Wrap(enc.Close(), "wav")
}

// WriteWAV renders t as a WAV file with one channel per line. A high level is
// a positive sample, a low level a negative one. Each unit of time spans
// samplesPerUnit samples; half units are rounded to the nearest sample.
//
func WriteWAV(ws io.WriteSeeker, t *Trace, samplesPerUnit int) error {
	if err := t.check(); err != nil {
		return err
	}
	if samplesPerUnit < 2 {
		return errors.Errorf("need at least 2 samples per unit, got %d", samplesPerUnit)
	}
	chans := len(t.Lines)
	if chans == 0 {
		return errors.New("trace has no lines")
	}
	total := int(math.Round(float64(sigtrace.Elapsed(t.Frames)) * float64(samplesPerUnit)))
	var (
		data = make([]int, 0, total*chans)
		now  sigtrace.Duration
		done int
	)
	for _, f := range t.Frames {
		now += f.Head().Duration
		end := int(math.Round(float64(now) * float64(samplesPerUnit)))
		ls := f.Levels()
		for ; done < end; done++ {
			for _, l := range ls {
				if l == sigtrace.High {
					data = append(data, amplitude)
				} else {
					data = append(data, -amplitude)
				}
			}
		}
	}
	return writeWAV(ws, chans, data)
}

// WriteRampWAV renders the integrator output of a dual-slope conversion as a
// mono WAV file, scaled so that the peak of the ramp reaches full amplitude.
//
func WriteRampWAV(ws io.WriteSeeker, pts []convert.RampPoint) error {
	if len(pts) == 0 {
		return errors.New("empty ramp")
	}
	var peak float64
	for _, p := range pts {
		peak = math.Max(peak, math.Abs(p.V))
	}
	data := make([]int, len(pts))
	if peak > 0 {
		for i, p := range pts {
			data[i] = int(math.Round(p.V / peak * amplitude))
		}
	}
	return writeWAV(ws, 1, data)
}
