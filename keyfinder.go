// SPDX-License-Identifier: EPL-2.0

package keyfinder

import (
	"io"
	"log/slog"
	"sync"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/codec"
	"github.com/Stepan-Kasyanenko/keyfinder-cli/container"
	"github.com/Stepan-Kasyanenko/keyfinder-cli/decode"
	"github.com/Stepan-Kasyanenko/keyfinder-cli/keyfind"
	"github.com/Stepan-Kasyanenko/keyfinder-cli/media"
)

// Decoder turns an audio file of any supported container and codec
// into canonical samples. The format and codec registries are built
// lazily, exactly once, on first use; after that a Decoder is safe for
// concurrent use.
type Decoder struct {
	log *slog.Logger

	once    sync.Once
	formats *container.Registry
	codecs  *codec.Registry
}

// New returns a Decoder that logs through log. A nil logger disables
// logging.
func New(log *slog.Logger) *Decoder {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Decoder{log: log}
}

func (d *Decoder) ensureInitialized() {
	d.once.Do(func() {
		d.formats = container.DefaultRegistry()
		d.codecs = codec.DefaultRegistry()
	})
}

// DecodeFile decodes the first audio stream of the file at path into
// audio: frame rate and channel count recorded, every sample widened
// to float in decode order.
func (d *Decoder) DecodeFile(path string, audio *media.AudioData) error {
	d.ensureInitialized()

	src, err := d.formats.Open(path, d.log)
	if err != nil {
		return err
	}
	defer src.Close()

	if err := src.Probe(); err != nil {
		return err
	}

	return decode.FillAudioData(src, d.codecs, audio, d.log)
}

// FindKey decodes the file at path and estimates its musical key.
func (d *Decoder) FindKey(path string, finder *keyfind.Finder) (keyfind.Key, error) {
	var audio media.AudioData
	if err := d.DecodeFile(path, &audio); err != nil {
		return keyfind.KeySilence, err
	}

	return finder.KeyOfAudio(&audio)
}
