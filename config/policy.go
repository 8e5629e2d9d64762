package config

// Policy holds the business rules that operations staff may tune without a
// code change.
type Policy struct {
	// OverdueGraceDays is how many whole days past its scheduled date an
	// inspection may sit before it counts as overdue. 0 means any past date.
	OverdueGraceDays int
	// AllowPastScheduling lets staff record an inspection dated before today.
	AllowPastScheduling bool
	// ComplaintOnFailedCheck opens a complaint for every failed equipment
	// check when an inspection result is submitted.
	ComplaintOnFailedCheck bool
	// DueSoonDays is the look-ahead window for upcoming inspections.
	DueSoonDays int
}

func DefaultPolicy() Policy {
	return Policy{
		OverdueGraceDays:       0,
		AllowPastScheduling:    false,
		ComplaintOnFailedCheck: true,
		DueSoonDays:            7,
	}
}

func LoadPolicy() Policy {
	def := DefaultPolicy()
	p := Policy{
		OverdueGraceDays:       GetEnvInt("OVERDUE_GRACE_DAYS", def.OverdueGraceDays),
		AllowPastScheduling:    GetEnvBool("ALLOW_PAST_SCHEDULING", def.AllowPastScheduling),
		ComplaintOnFailedCheck: GetEnvBool("COMPLAINT_ON_FAILED_CHECK", def.ComplaintOnFailedCheck),
		DueSoonDays:            GetEnvInt("DUE_SOON_DAYS", def.DueSoonDays),
	}
	if p.OverdueGraceDays < 0 {
		p.OverdueGraceDays = 0
	}
	if p.DueSoonDays <= 0 {
		p.DueSoonDays = def.DueSoonDays
	}
	return p
}
