package runlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchErrorSignature(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *ErrorInfo
	}{
		{
			name: "resources not in pool",
			text: "some log noise\n" +
				"LookupError: When trying to connect node block 'nb1' " +
				"to workflow 'wf' after node block 'nb0':\n" +
				"[!] C-PAC says: None of the listed resources are " +
				"in the resource pool:\n" +
				"space-T1w_desc-brain_mask\n",
			want: &ErrorInfo{
				NodeBlock:         "nb1",
				TargetWorkflow:    "wf",
				PreviousNodeBlock: "nb0",
				MissingResources:  "space-T1w_desc-brain_mask",
			},
		},
		{
			name: "connected resources do not exist",
			text: "LookupError: When trying to connect node block 'nb1' " +
				"to workflow 'wf' after node block 'nb0':\n" +
				"[!] C-PAC says: None of the listed resources " +
				"in the node block being connected exist " +
				"in the resource pool.\n" +
				"Resources:\n" +
				"['desc-preproc_bold']\n",
			want: &ErrorInfo{
				NodeBlock:         "nb1",
				TargetWorkflow:    "wf",
				PreviousNodeBlock: "nb0",
				MissingResources:  "['desc-preproc_bold']",
			},
		},
		{
			name: "multiple node blocks",
			text: "LookupError: When trying to connect one of the node " +
				"blocks ['nb1', 'nb2'] " +
				"to workflow 'wf' after node block 'nb0':\n" +
				"[!] C-PAC says: None of the listed resources are " +
				"in the resource pool:\n" +
				"desc-mean_bold\n",
			want: &ErrorInfo{
				NodeBlock:         "'nb1', 'nb2'",
				TargetWorkflow:    "wf",
				PreviousNodeBlock: "nb0",
				MissingResources:  "desc-mean_bold",
			},
		},
		{
			name: "no match",
			text: "KeyError: something entirely different\n",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchErrorSignature(tt.text)

			if tt.want == nil {
				assert.Nil(t, got)

				return
			}

			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchErrorSignatureFirstWins(t *testing.T) {
	// Text containing both a single-block and a multi-block error;
	// the single-block shape is tried first.
	text := "LookupError: When trying to connect one of the node " +
		"blocks ['m1'] to workflow 'mwf' after node block 'm0':\n" +
		"[!] C-PAC says: None of the listed resources are " +
		"in the resource pool:\nmulti_res\n" +
		"LookupError: When trying to connect node block 's1' " +
		"to workflow 'swf' after node block 's0':\n" +
		"[!] C-PAC says: None of the listed resources are " +
		"in the resource pool:\nsingle_res\n"

	got := MatchErrorSignature(text)
	require.NotNil(t, got)
	assert.Equal(t, "s1", got.NodeBlock)
	assert.Equal(t, "single_res", got.MissingResources)
}
