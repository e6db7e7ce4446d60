package core

import (
	"hash/fnv"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/voidworks/pulsar/vk"
)

// Validation output arrives with heavy repetition, so messages are
// deduplicated per (id, name, type, severity) and throttled per class.
const (
	errorFirstN    = 10
	errorEveryNth  = 50
	warningFirstN  = 3
	warningEveryNth = 200
	maxLabelsLogged = 8
)

type debugLog struct {
	seen map[uint64]uint64
}

func newDebugLog() *debugLog {
	return &debugLog{seen: make(map[uint64]uint64)}
}

func (d *debugLog) key(message vk.DebugMessage) uint64 {
	h := fnv.New64a()
	h.Write([]byte(strconv.FormatInt(int64(message.IDNumber), 10)))
	h.Write([]byte(message.IDName))
	h.Write([]byte(strconv.FormatUint(uint64(message.Types), 10)))
	h.Write([]byte(strconv.FormatUint(uint64(message.Severity), 10)))
	return h.Sum64()
}

// shouldEmit counts occurrences per message identity and applies the
// firstN/everyNth schedule. The firstN+1'th occurrence emits once as a
// suppression notice.
func (d *debugLog) shouldEmit(key uint64, firstN, everyNth uint64) (emit, suppressNotice bool) {
	d.seen[key]++
	count := d.seen[key]
	switch {
	case count <= firstN:
		return true, false
	case count == firstN+1:
		return false, true
	default:
		return count%everyNth == 0, false
	}
}

// handle is installed as the vk debug handler when debug mode is on.
func (d *debugLog) handle(message vk.DebugMessage) {
	entry := log.WithFields(logrus.Fields{
		"source": "validation",
		"id":     message.IDName,
	})

	key := d.key(message)
	var emit, notice bool
	var level logrus.Level
	switch {
	case message.Severity&vk.DebugSeverityError != 0:
		emit, notice = d.shouldEmit(key, errorFirstN, errorEveryNth)
		level = logrus.ErrorLevel
	case message.Severity&vk.DebugSeverityWarning != 0:
		emit, notice = d.shouldEmit(key, warningFirstN, warningEveryNth)
		level = logrus.WarnLevel
	default:
		emit, notice = d.shouldEmit(key, warningFirstN, warningEveryNth)
		level = logrus.DebugLevel
	}

	if notice {
		entry.Log(level, "suppressing further occurrences of this message")
		return
	}
	if !emit {
		return
	}

	entry.Log(level, message.Message)
	logLabels(entry, "queue", message.QueueLabels)
	logLabels(entry, "cmd", message.CmdLabels)
	logLabels(entry, "object", message.Objects)
}

func logLabels(entry *logrus.Entry, kind string, labels []string) {
	for i, label := range labels {
		if i == maxLabelsLogged {
			entry.Debugf("... %d more %s labels suppressed", len(labels)-maxLabelsLogged, kind)
			return
		}
		entry.Debugf("%s label: %s", kind, label)
	}
}
