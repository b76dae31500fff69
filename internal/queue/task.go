package queue

import (
	"encoding/json"
	"fmt"
)

type TaskType string

const (
	// TaskPurgeObject retries removal of a storage object left behind by
	// approval cleanup.
	TaskPurgeObject TaskType = "purge_object"
	// TaskSweepDrafts removes drafts nobody touched within the expiry window.
	TaskSweepDrafts TaskType = "sweep_drafts"
)

type Task struct {
	Type      TaskType `json:"type"`
	OwnerID   string   `json:"ownerId,omitempty"`
	PhotoID   string   `json:"photoId,omitempty"`
	ObjectKey string   `json:"objectKey,omitempty"`
}

func (t Task) values() map[string]any {
	values := map[string]any{"type": string(t.Type)}
	if t.OwnerID != "" {
		values["ownerId"] = t.OwnerID
	}
	if t.PhotoID != "" {
		values["photoId"] = t.PhotoID
	}
	if t.ObjectKey != "" {
		values["objectKey"] = t.ObjectKey
	}
	return values
}

// DecodeTask converts stream entry values back into a Task.
func DecodeTask(values map[string]interface{}) (Task, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return Task{}, err
	}
	var task Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return Task{}, err
	}
	if task.Type == "" {
		return Task{}, fmt.Errorf("task type missing")
	}
	return task, nil
}
