package kb

// BuiltIn returns a knowledge base covering the USB driver and
// file_operations ops tables, the work-queue and high-resolution-timer
// async patterns, and a small kernel-API catalogue — usable with no
// external file, per the external-interfaces contract.
func BuiltIn() *KnowledgeBase {
	b := New()

	b.Frameworks["usb_driver"] = Framework{
		Name:        "usb_driver",
		Description: "USB core driver registration table",
		Header:      "linux/usb.h",
		Callbacks: map[string]FrameworkCallback{
			"probe": {
				Name:        "probe",
				Description: "Called when a matching USB device is inserted",
				CallChain: &CallChain{
					TriggerSource: "USB device insert",
					Nodes: []CallChainNode{
						{Name: "usb_new_device", Description: "enumerate new device"},
						{Name: "usb_probe_interface", Description: "match driver by id table"},
						{Name: "drv->probe", Description: "invoke driver probe", IsUserEntry: true},
					},
				},
			},
			"disconnect": {
				Name:        "disconnect",
				Description: "Called when the USB device is removed",
				CallChain: &CallChain{
					TriggerSource: "USB device remove",
					Nodes: []CallChainNode{
						{Name: "usb_disconnect", Description: "tear down interfaces"},
						{Name: "drv->disconnect", Description: "invoke driver disconnect", IsUserEntry: true},
					},
				},
			},
			"suspend": {Name: "suspend", Description: "Power-management suspend callback"},
			"resume":  {Name: "resume", Description: "Power-management resume callback"},
		},
	}

	b.Frameworks["file_operations"] = Framework{
		Name:        "file_operations",
		Description: "VFS file operations table",
		Header:      "linux/fs.h",
		Callbacks: map[string]FrameworkCallback{
			"open": {
				Name:        "open",
				Description: "Called when the device node is opened",
				CallChain: &CallChain{
					TriggerSource: "open(2) syscall",
					Nodes: []CallChainNode{
						{Name: "do_sys_open", Description: "resolve path, allocate fd"},
						{Name: "vfs_open", Description: "dentry/inode setup"},
						{Name: "fops->open", Description: "invoke driver open", IsUserEntry: true},
					},
				},
			},
			"read": {
				Name:        "read",
				Description: "Called on read(2)",
				CallChain: &CallChain{
					TriggerSource: "read(2) syscall",
					Nodes: []CallChainNode{
						{Name: "vfs_read", Description: "generic read path"},
						{Name: "fops->read", Description: "invoke driver read", IsUserEntry: true},
					},
				},
			},
			"write":   {Name: "write", Description: "Called on write(2)"},
			"release": {Name: "release", Description: "Called when the last reference is closed"},
		},
	}

	b.AsyncPatterns["work_queue"] = AsyncPattern{
		Name:        "work_queue",
		Description: "Deferred execution via the kernel workqueue",
		Context:     "Process",
	}
	b.AsyncPatterns["hrtimer"] = AsyncPattern{
		Name:        "hrtimer",
		Description: "High-resolution timer expiry callback",
		Context:     "HardIrq",
	}

	for _, e := range builtinKernelAPIs() {
		b.KernelAPIs[e[0]] = KernelAPI{Name: e[0], Header: e[1], Description: e[2]}
	}

	return b
}

func builtinKernelAPIs() [][3]string {
	return [][3]string{
		{"kzalloc", "linux/slab.h", "allocate zeroed kernel memory"},
		{"kfree", "linux/slab.h", "free kernel memory"},
		{"mutex_lock", "linux/mutex.h", "acquire a mutex, may sleep"},
		{"mutex_unlock", "linux/mutex.h", "release a mutex"},
		{"spin_lock", "linux/spinlock.h", "acquire a spinlock, does not sleep"},
		{"spin_unlock", "linux/spinlock.h", "release a spinlock"},
		{"printk", "linux/printk.h", "kernel log message"},
	}
}
