package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskbridge/deskbridge/internal/desktop"
)

func TestExecute_ReadCoordsSuccess(t *testing.T) {
	fake := desktop.NewFake()
	fake.OCRText = "dx code 123"

	in := NewInterpreter(fake, nil, nil, nil)
	wf := &VisualWorkflow{
		ID:      "wf1",
		Enabled: true,
		Steps: []Step{
			{
				ID:      "s1",
				Kind:    StepReadCoords,
				Enabled: true,
				ReadCoords: &ReadCoordsParams{
					X: 0, Y: 0, Width: 100, Height: 20,
					OutputVariable: "patient_id",
					ExtractNumbers: true,
				},
			},
		},
	}

	result := in.Execute(context.Background(), wf, nil)
	require.Equal(t, "success", result.Status)
	v, ok := Environment(result.Environment).GetString("patient_id")
	require.True(t, ok)
	assert.Equal(t, "123", v)
	assert.Equal(t, 1, fake.ModifiersReleased)
	assert.NotEmpty(t, result.ExecutionID)
}

func TestExecute_EachRunGetsADistinctExecutionID(t *testing.T) {
	fake := desktop.NewFake()
	in := NewInterpreter(fake, nil, nil, nil)
	wf := &VisualWorkflow{Steps: []Step{
		{ID: "s1", Kind: StepRecordAudio, Enabled: true, RecordAudio: &RecordAudioParams{OutputVariable: "audio"}},
	}}

	first := in.Execute(context.Background(), wf, nil)
	second := in.Execute(context.Background(), wf, nil)
	assert.NotEmpty(t, first.ExecutionID)
	assert.NotEqual(t, first.ExecutionID, second.ExecutionID)
}

func TestExecute_ReadCoordsNoNumbersFound(t *testing.T) {
	fake := desktop.NewFake()
	fake.OCRText = "no digits here"

	in := NewInterpreter(fake, nil, nil, nil)
	wf := &VisualWorkflow{
		Steps: []Step{
			{
				ID:      "s1",
				Kind:    StepReadCoords,
				Enabled: true,
				ReadCoords: &ReadCoordsParams{
					Width: 10, Height: 10, OutputVariable: "out", ExtractNumbers: true,
				},
			},
		},
	}

	result := in.Execute(context.Background(), wf, nil)
	assert.Equal(t, "error", result.Status)
	assert.Equal(t, "s1", result.FailedStepID)
	assert.Equal(t, string(ErrNoNumbersFound), result.ErrorCode)
}

func TestExecute_SkipsDisabledSteps(t *testing.T) {
	fake := desktop.NewFake()
	in := NewInterpreter(fake, nil, nil, nil)

	wf := &VisualWorkflow{
		Steps: []Step{
			{ID: "s1", Kind: StepReadCoords, Enabled: false, ReadCoords: &ReadCoordsParams{}},
			{ID: "s2", Kind: StepRecordAudio, Enabled: true, RecordAudio: &RecordAudioParams{OutputVariable: "audio"}},
		},
	}

	result := in.Execute(context.Background(), wf, nil)
	require.Equal(t, "success", result.Status)
	v, ok := Environment(result.Environment).GetString("audio")
	require.True(t, ok)
	assert.Equal(t, "RECORDING_PLACEHOLDER", v)
}

func TestExecute_TranscribeAudioRequiresSuppliedTranscription(t *testing.T) {
	fake := desktop.NewFake()
	in := NewInterpreter(fake, nil, nil, nil)

	wf := &VisualWorkflow{
		Steps: []Step{
			{ID: "s1", Kind: StepTranscribeAudio, Enabled: true, TranscribeAudio: &TranscribeAudioParams{OutputVariable: "t"}},
		},
	}

	result := in.Execute(context.Background(), wf, nil)
	assert.Equal(t, "error", result.Status)
	assert.Equal(t, string(ErrMissingVariable), result.ErrorCode)
}

func TestExecute_TranscribeAudioWithSuppliedTranscription(t *testing.T) {
	fake := desktop.NewFake()
	in := NewInterpreter(fake, nil, nil, nil)

	wf := &VisualWorkflow{
		Steps: []Step{
			{ID: "s1", Kind: StepTranscribeAudio, Enabled: true, TranscribeAudio: &TranscribeAudioParams{OutputVariable: "t"}},
		},
	}

	result := in.Execute(context.Background(), wf, map[string]any{"transcription": "patient reports headache"})
	require.Equal(t, "success", result.Status)
	v, ok := Environment(result.Environment).GetString("t")
	require.True(t, ok)
	assert.Equal(t, "patient reports headache", v)
}
