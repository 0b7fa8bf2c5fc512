// Package async recognises kernel async-dispatch mechanisms — work queues,
// timers, interrupts, tasklets, kthreads, RCU callbacks and more — by
// pattern-matching the raw source text line by line, verifying only that
// the matched handler name is a function present in the parse result.
package async

import (
	"regexp"

	"github.com/flowsight/flowsight/model"
)

// pattern is one recognised async mechanism's bind/trigger rule pair.
type pattern struct {
	mechanism model.AsyncMechanism
	context   model.ExecutionContext
	bind      *regexp.Regexp // capture group layout: ([variable,] handler) — handler is always last
	trigger   *regexp.Regexp
}

// patterns is the declarative mechanism table. Adding a new mechanism
// requires only a new entry here, never a change to Tracker's control
// flow, per the pattern-regex-maintenance design note.
var patterns = []pattern{
	{
		mechanism: model.AsyncMechanism{Kind: model.AsyncWorkQueue, Delayed: false},
		context:   model.ContextProcess,
		bind:      regexp.MustCompile(`INIT_WORK\s*\(\s*&?([\w.>-]+)\s*,\s*(\w+)\s*\)`),
		trigger:   regexp.MustCompile(`\b(?:schedule_work|queue_work)\s*\(\s*[\w]*,?\s*&?([\w.>-]*)`),
	},
	{
		mechanism: model.AsyncMechanism{Kind: model.AsyncWorkQueue, Delayed: true},
		context:   model.ContextProcess,
		bind:      regexp.MustCompile(`INIT_DELAYED_WORK\s*\(\s*&?([\w.>-]+)\s*,\s*(\w+)\s*\)`),
		trigger:   regexp.MustCompile(`\b(?:schedule_delayed_work|queue_delayed_work)\s*\(\s*[\w]*,?\s*&?([\w.>-]*)`),
	},
	{
		mechanism: model.AsyncMechanism{Kind: model.AsyncTimer, HighResolution: false},
		context:   model.ContextSoftIrq,
		bind:      regexp.MustCompile(`(?:timer_setup|setup_timer)\s*\(\s*&?([\w.>-]+)\s*,\s*(\w+)`),
		trigger:   regexp.MustCompile(`\b(?:add_timer|mod_timer)\s*\(\s*&?([\w.>-]*)`),
	},
	{
		mechanism: model.AsyncMechanism{Kind: model.AsyncTimer, HighResolution: true},
		context:   model.ContextHardIrq,
		bind:      regexp.MustCompile(`hrtimer_init\s*\(\s*&?([\w.>-]+)[^;]*;\s*[\w.>-]*\.function\s*=\s*(\w+)`),
		trigger:   regexp.MustCompile(`\bhrtimer_start\s*\(\s*&?([\w.>-]*)`),
	},
	{
		mechanism: model.AsyncMechanism{Kind: model.AsyncInterrupt, Threaded: false},
		context:   model.ContextHardIrq,
		bind:      regexp.MustCompile(`\brequest_irq\s*\(\s*[\w]+\s*,\s*(\w+)`),
		trigger:   regexp.MustCompile(`\brequest_irq\s*\(`),
	},
	{
		mechanism: model.AsyncMechanism{Kind: model.AsyncInterrupt, Threaded: true},
		context:   model.ContextProcess,
		bind:      regexp.MustCompile(`\brequest_threaded_irq\s*\(\s*[\w]+\s*,\s*\w*\s*,\s*(\w+)`),
		trigger:   regexp.MustCompile(`\brequest_threaded_irq\s*\(`),
	},
	{
		mechanism: model.AsyncMechanism{Kind: model.AsyncTasklet},
		context:   model.ContextSoftIrq,
		bind:      regexp.MustCompile(`tasklet_init\s*\(\s*&?([\w.>-]+)\s*,\s*(\w+)`),
		trigger:   regexp.MustCompile(`\b(?:tasklet_schedule|tasklet_hi_schedule)\s*\(\s*&?([\w.>-]*)`),
	},
	{
		mechanism: model.AsyncMechanism{Kind: model.AsyncSoftirq},
		context:   model.ContextSoftIrq,
		bind:      regexp.MustCompile(`open_softirq\s*\(\s*\w+\s*,\s*(\w+)`),
		trigger:   regexp.MustCompile(`\braise_softirq\s*\(`),
	},
	{
		mechanism: model.AsyncMechanism{Kind: model.AsyncKThread},
		context:   model.ContextProcess,
		bind:      regexp.MustCompile(`kthread_(?:run|create)\s*\(\s*(\w+)`),
		trigger:   regexp.MustCompile(`\bwake_up_process\s*\(`),
	},
	{
		mechanism: model.AsyncMechanism{Kind: model.AsyncRcuCallback},
		context:   model.ContextSoftIrq,
		bind:      regexp.MustCompile(`call_rcu\s*\(\s*&?([\w.>-]+)\s*,\s*(\w+)`),
		trigger:   regexp.MustCompile(`\bcall_rcu\s*\(`),
	},
	{
		mechanism: model.AsyncMechanism{Kind: model.AsyncNotifier},
		context:   model.ContextProcess,
		bind:      regexp.MustCompile(`(\w+)\.notifier_call\s*=\s*(\w+)`),
		trigger:   regexp.MustCompile(`\b(?:\w*_notifier_call_chain|notifier_call_chain)\s*\(`),
	},
	{
		mechanism: model.AsyncMechanism{Kind: model.AsyncCompletion},
		context:   model.ContextProcess,
		bind:      regexp.MustCompile(`init_completion\s*\(\s*&?([\w.>-]+)\s*\)`),
		trigger:   regexp.MustCompile(`\bcomplete\s*\(\s*&?([\w.>-]*)`),
	},
	{
		mechanism: model.AsyncMechanism{Kind: model.AsyncWaitqueue},
		context:   model.ContextProcess,
		bind:      regexp.MustCompile(`init_waitqueue_head\s*\(\s*&?([\w.>-]+)\s*\)`),
		trigger:   regexp.MustCompile(`\bwake_up(?:_interruptible)?\s*\(\s*&?([\w.>-]*)`),
	},
	{
		mechanism: model.AsyncMechanism{Kind: model.AsyncIrqWork},
		context:   model.ContextHardIrq,
		bind:      regexp.MustCompile(`init_irq_work\s*\(\s*&?([\w.>-]+)\s*,\s*(\w+)`),
		trigger:   regexp.MustCompile(`\birq_work_queue\s*\(\s*&?([\w.>-]*)`),
	},
}
