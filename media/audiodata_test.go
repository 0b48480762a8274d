// SPDX-License-Identifier: EPL-2.0

package media

import "testing"

func TestAudioData_ZeroValue(t *testing.T) {
	t.Parallel()

	var a AudioData

	if a.FrameRate() != 0 {
		t.Errorf("FrameRate() = %d, want 0", a.FrameRate())
	}
	if a.Channels() != 0 {
		t.Errorf("Channels() = %d, want 0", a.Channels())
	}
	if a.Len() != 0 {
		t.Errorf("Len() = %d, want 0", a.Len())
	}
}

func TestAudioData_Setters(t *testing.T) {
	t.Parallel()

	var a AudioData
	a.SetFrameRate(44100)
	a.SetChannels(2)

	if a.FrameRate() != 44100 {
		t.Errorf("FrameRate() = %d, want 44100", a.FrameRate())
	}
	if a.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", a.Channels())
	}
}

func TestAudioData_AppendKeepsOrder(t *testing.T) {
	t.Parallel()

	var a AudioData
	want := []float32{0, -32768, 32767, 12.5}
	for _, s := range want {
		a.Append(s)
	}

	if a.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", a.Len(), len(want))
	}
	for i, w := range want {
		if got := a.Sample(i); got != w {
			t.Errorf("Sample(%d) = %v, want %v", i, got, w)
		}
	}
}

func TestAudioData_SamplesAliasesStorage(t *testing.T) {
	t.Parallel()

	var a AudioData
	a.Append(1)
	a.Append(2)

	s := a.Samples()
	if len(s) != 2 || s[0] != 1 || s[1] != 2 {
		t.Fatalf("Samples() = %v, want [1 2]", s)
	}
}

func TestAudioData_Float32Buffer(t *testing.T) {
	t.Parallel()

	var a AudioData
	a.SetFrameRate(48000)
	a.SetChannels(1)
	a.Append(100)

	buf := a.Float32Buffer()
	if buf.Format.SampleRate != 48000 {
		t.Errorf("buffer sample rate = %d, want 48000", buf.Format.SampleRate)
	}
	if buf.Format.NumChannels != 1 {
		t.Errorf("buffer channels = %d, want 1", buf.Format.NumChannels)
	}
	if len(buf.Data) != 1 || buf.Data[0] != 100 {
		t.Errorf("buffer data = %v, want [100]", buf.Data)
	}
}
