package dataset

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tinyDims = Dims{Features: 4, Labels: 3}

func TestReadCTF(t *testing.T) {
	in := "|labels 0 1 0 |features 0 255 12 3\n\n|features 1 2 3 4 |labels 1 0 0\n"

	samples, err := ReadCTF(strings.NewReader(in), tinyDims)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, []float64{0, 255, 12, 3}, samples[0].Features)
	assert.Equal(t, []float64{0, 1, 0}, samples[0].Labels)
	assert.Equal(t, []float64{1, 0, 0}, samples[1].Labels)
}

func TestReadCTFWithoutLabels(t *testing.T) {
	in := "|labels 0 1 0 |features 0 255 12 3\n"

	samples, err := ReadCTF(strings.NewReader(in), Dims{Features: 4})
	require.NoError(t, err)
	assert.Nil(t, samples[0].Labels)
}

func TestReadCTFMalformed(t *testing.T) {
	cases := map[string]string{
		"short features": "|labels 0 1 0 |features 1 2 3\n",
		"missing labels": "|features 1 2 3 4\n",
		"bad number":     "|labels 0 1 0 |features 1 2 x 4\n",
		"unknown field":  "|labels 0 1 0 |features 1 2 3 4 |extra 1\n",
		"no bar":         "labels 0 1 0\n",
		"duplicate":      "|labels 0 1 0 |features 1 2 3 4 |features 1 2 3 4\n",
		"nan pixel":      "|labels 1 0 0 |features NaN 1 2 3\n",
		"inf pixel":      "|labels 1 0 0 |features 1 +Inf 2 3\n",
		"negative pixel": "|labels 1 0 0 |features 1 2 -7 3\n",
		"pixel too big":  "|labels 1 0 0 |features 1 2 3 9999\n",
		"label too big":  "|labels 2 0 0 |features 1 2 3 4\n",
		"nan label":      "|labels nan 0 0 |features 1 2 3 4\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCTF(strings.NewReader("|labels 1 0 0 |features 1 1 1 1\n"+in), tinyDims)
			var perr *ParseError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, 2, perr.Line)
		})
	}
}

func TestReadCTFEmpty(t *testing.T) {
	_, err := ReadCTF(strings.NewReader("\n\n"), tinyDims)
	require.ErrorIs(t, err, ErrNoRecords)
}

func TestWriteCTFRoundTrip(t *testing.T) {
	samples := []Sample{
		{Features: []float64{0, 128, 255, 7}, Labels: []float64{0, 0, 1}},
		{Features: []float64{9, 8, 7, 6}, Labels: []float64{1, 0, 0}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCTF(&buf, samples))
	assert.True(t, strings.HasPrefix(buf.String(), "|labels 0 0 1 |features 0 128 255 7\n"))

	back, err := ReadCTF(&buf, tinyDims)
	require.NoError(t, err)
	assert.Equal(t, samples, back)
}
