package module

import dom "tradein/internal/services/sheetwatch/domain"

// Ports holds the ports exposed by the watch module
type Ports struct {
	Worker dom.WorkerPort
	Cycle  dom.CyclePort
}
