package bind_group_provider

// BufferWrite describes a single uniform buffer write targeting one pass slot. Data is written at
// offset 0.
type BufferWrite struct {
	Slot Slot
	Data []byte
}
