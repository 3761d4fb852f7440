package environment

// Handler is a callback a core handed to the frontend: a native function
// address or, for WebAssembly cores, a function table index. The zero
// value means the core never registered one.
type Handler uintptr

// IsSet reports whether the core registered the handler.
func (h Handler) IsSet() bool {
	return h != 0
}

// DiskControl is the disk swapping interface a core may expose.
type DiskControl struct {
	SetEjectState     Handler
	GetEjectState     Handler
	GetImageIndex     Handler
	SetImageIndex     Handler
	GetNumImages      Handler
	ReplaceImageIndex Handler
	AddImageIndex     Handler
}

// CallbackRegistry collects the optional callbacks a core registers while
// it talks to the environment. Nothing here is ever invoked during
// extraction. A later registration for the same slot replaces the earlier
// one.
type CallbackRegistry struct {
	KeyboardEvent      Handler
	Disk               DiskControl
	HWContextReset     Handler
	HWContextDestroy   Handler
	AudioCallback      Handler
	AudioSetState      Handler
	FrameTime          Handler
	FrameTimeReference int64
}

// Registered returns the names of the slots the core filled, in a fixed
// order.
func (r *CallbackRegistry) Registered() []string {
	slots := []struct {
		name string
		h    Handler
	}{
		{"keyboard_event", r.KeyboardEvent},
		{"disk_set_eject_state", r.Disk.SetEjectState},
		{"disk_get_eject_state", r.Disk.GetEjectState},
		{"disk_get_image_index", r.Disk.GetImageIndex},
		{"disk_set_image_index", r.Disk.SetImageIndex},
		{"disk_get_num_images", r.Disk.GetNumImages},
		{"disk_replace_image_index", r.Disk.ReplaceImageIndex},
		{"disk_add_image_index", r.Disk.AddImageIndex},
		{"hw_context_reset", r.HWContextReset},
		{"hw_context_destroy", r.HWContextDestroy},
		{"audio_callback", r.AudioCallback},
		{"audio_set_state", r.AudioSetState},
		{"frame_time", r.FrameTime},
	}

	var names []string
	for _, s := range slots {
		if s.h.IsSet() {
			names = append(names, s.name)
		}
	}
	return names
}
