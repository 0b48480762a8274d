// SPDX-License-Identifier: EPL-2.0

package keyfind_test

import (
	"fmt"
	"log"
	"math"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/keyfind"
	"github.com/Stepan-Kasyanenko/keyfinder-cli/media"
)

func ExampleFinder_KeyOfAudio() {
	// Two seconds of a pure 440 Hz tone.
	var audio media.AudioData
	audio.SetFrameRate(44100)
	audio.SetChannels(1)
	for i := range 2 * 44100 {
		audio.Append(float32(16384 * math.Sin(2*math.Pi*440*float64(i)/44100)))
	}

	key, err := keyfind.New().KeyOfAudio(&audio)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(key)
	// Output: A
}
