package models

// Job describes an occupation a user can hold. Salary is the per-shift base
// pay, Multiplier scales it, Cost is the one-time fee to switch into the job.
type Job struct {
	Name       string
	Salary     int64
	Multiplier float64
	Cost       int64
}

// JobNeet is the default job for new accounts. It pays no base salary;
// working as a neet yields a flat random reward instead.
const JobNeet = "ニート"

// Jobs is the job table, keyed by job name
var Jobs = map[string]Job{
	JobNeet:      {Name: JobNeet, Salary: 0, Multiplier: 1.0, Cost: 0},
	"アルバイト":  {Name: "アルバイト", Salary: 1000, Multiplier: 1.1, Cost: 0},
	"サラリーマン": {Name: "サラリーマン", Salary: 3000, Multiplier: 1.2, Cost: 50_000},
	"エンジニア":  {Name: "エンジニア", Salary: 5000, Multiplier: 1.5, Cost: 150_000},
	"医者":        {Name: "医者", Salary: 8000, Multiplier: 1.8, Cost: 500_000},
	"石油王":      {Name: "石油王", Salary: 50000, Multiplier: 3.0, Cost: 10_000_000},
}

// LookupJob returns the job for name, falling back to the neet job for
// unknown names so stale rows never break salary calculation.
func LookupJob(name string) Job {
	if job, ok := Jobs[name]; ok {
		return job
	}
	return Jobs[JobNeet]
}
