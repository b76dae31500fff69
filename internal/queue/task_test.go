package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTaskFromStreamValues(t *testing.T) {
	task := Task{Type: TaskPurgeObject, OwnerID: "owner-1", PhotoID: "p1", ObjectKey: "photos/owner-1/p1.jpeg"}

	values := map[string]interface{}{}
	for k, v := range task.values() {
		values[k] = v
	}

	got, err := DecodeTask(values)
	require.NoError(t, err)
	assert.Equal(t, task, got)
}

func TestDecodeTaskOmitsEmptyFields(t *testing.T) {
	values := Task{Type: TaskSweepDrafts}.values()
	assert.Equal(t, map[string]any{"type": "sweep_drafts"}, values)
}

func TestDecodeTaskRequiresType(t *testing.T) {
	_, err := DecodeTask(map[string]interface{}{"objectKey": "x"})
	assert.Error(t, err)
}
