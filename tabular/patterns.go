/*
patterns.go - Semantic field catalog and name patterns

PURPOSE:
  Declares every semantic field the engine understands and, for each, the
  ordered list of header-name patterns used to detect it in a raw table.
  Pattern order is priority order: for an ambiguous header set, the earliest
  matching pattern wins.

INVARIANT:
  The pattern lists are a fixed catalog, not a configuration surface. They
  encode how the three upstream systems label their exports; changing them
  changes which column feeds which metric.

SEE ALSO:
  - mapper.go: Applies these patterns to a Table
*/
package tabular

// Field is a canonical semantic field name. Everything downstream of the
// mapper operates on Fields, never on raw column headers.
type Field string

const (
	FieldID             Field = "id"
	FieldWaveNum        Field = "wave_num"
	FieldName           Field = "name"
	FieldStartDate      Field = "start_date"
	FieldFinishDate     Field = "finish_date"
	FieldForecastFinish Field = "forecast_finish"
	FieldBudget         Field = "budget"
	FieldCapex          Field = "capex"
	FieldOpex           Field = "opex"
	FieldEAC            Field = "eac"
	FieldActualCost     Field = "actual_cost"
	FieldHours          Field = "hours"
	FieldActualHours    Field = "actual_hours"
	FieldStatus         Field = "status"
	FieldScheduleHealth Field = "schedule_health"
	FieldBudgetHealth   Field = "budget_health"
	FieldRisk           Field = "risk"
	FieldSnapshotDate   Field = "snapshot_date"
	FieldCompletion     Field = "completion"
	FieldStage          Field = "stage"
	FieldOwner          Field = "owner"
	FieldStrategic      Field = "strategic_alignment"
	FieldBenefits       Field = "benefits"
	FieldValueLever     Field = "value_lever"
	FieldApprovalDate   Field = "approval_date"
	FieldInterdeps      Field = "interdependencies"
	FieldComplexity     Field = "complexity"
	FieldTask           Field = "task"
	FieldResource       Field = "resource"
)

// fieldSpec pairs a Field with its ordered candidate patterns.
type fieldSpec struct {
	field    Field
	patterns []string
}

// fieldCatalog is the full detection catalog, in a fixed evaluation order.
// FieldName is special-cased by the mapper: it is kept only when it resolves
// to a different column than FieldID.
var fieldCatalog = []fieldSpec{
	{FieldID, []string{
		"project_id", "projectid", "project id", "project code", "project_code",
		"id", "project", "project_name", "project name", "name", "projectname",
		"project no", "project_no", "projectno", "project number", "project_number",
		"wbs", "wbs code", "wbs_code",
	}},
	{FieldWaveNum, []string{
		"wave #", "wave#", "wave_#", "wave", "wave_number", "wave number", "#",
	}},
	{FieldName, []string{
		"project_name", "project name", "projectname", "name",
		"project title", "project_title", "title", "description",
	}},
	{FieldStartDate, []string{
		"baseline_start", "baseline start", "start_date", "start date", "start",
		"planned_start", "planned start", "begin_date", "begin date",
		"project_start", "project start", "estimated start date",
		"estimated start date of it work",
	}},
	{FieldFinishDate, []string{
		"baseline_finish", "baseline finish", "baseline_end", "baseline end",
		"end_date", "end date", "finish_date", "finish date", "finish", "end",
		"planned_finish", "planned finish", "planned_end", "planned end",
		"project_end", "project end", "completion_date", "completion date",
		"estimated end date", "estimated end date of it work",
	}},
	{FieldForecastFinish, []string{
		"forecast_finish", "forecast finish", "forecast_end", "forecast end",
		"forecasted_finish", "forecasted finish", "estimated_finish", "estimated finish",
		"projected_finish", "projected finish", "forecast completion", "forecast_completion",
		"l4 forecast date", "l4 forecast", "l4_forecast_date",
	}},
	{FieldBudget, []string{
		"total_budget", "total budget", "budget", "approved_budget", "approved budget",
		"baseline_budget", "baseline budget", "planned_budget", "planned budget",
		"total_cost", "total cost", "project_budget", "project budget",
		"overall total budget", "total overall it costs",
	}},
	{FieldCapex, []string{
		"capex", "cap_ex", "capital_expense", "capital expense", "total budget capex",
	}},
	{FieldOpex, []string{
		"opex", "op_ex", "operating_expense", "operating expense", "total budget opex",
	}},
	{FieldEAC, []string{"eac", "total eac", "estimate at completion"}},
	{FieldActualCost, []string{
		"actual_cost", "actual cost", "cost", "amount", "actual_amount", "actual amount",
		"actuals", "spent", "expenditure", "total_actual", "total actual", "total",
	}},
	{FieldHours, []string{
		"planned_hours", "planned hours", "hours", "effort", "estimated_hours",
		"estimated hours", "baseline_hours", "baseline hours", "total_hours", "total hours",
	}},
	{FieldActualHours, []string{
		"actual_hours", "actual hours", "hours", "worked_hours", "worked hours",
		"time_spent", "time spent", "logged_hours", "logged hours",
	}},
	{FieldStatus, []string{
		"status", "project_status", "project status", "state", "phase",
		"current_status", "current status", "rag", "rag_status", "rag status",
		"weekly status", "high level status",
	}},
	{FieldScheduleHealth, []string{
		"schedule_health", "schedule health", "schedule_status", "schedule status",
		"schedule_rag", "schedule rag", "timeline_status", "timeline status",
	}},
	{FieldBudgetHealth, []string{
		"budget_health", "budget health", "budget_status", "budget status",
		"budget_rag", "budget rag", "cost_status", "cost status", "financial_health",
	}},
	{FieldRisk, []string{
		"risk_level", "risk level", "risk", "risk_status", "risk status",
		"risk_rag", "risk rag", "overall_risk", "overall risk", "risk health",
	}},
	{FieldSnapshotDate, []string{
		"snapshot_date", "snapshot date", "report_date", "report date",
		"as_of_date", "as of date", "date", "week", "reporting_date",
	}},
	{FieldCompletion, []string{
		"completion_pct", "completion pct", "completion", "percent_complete",
		"percent complete", "% complete", "pct_complete", "progress",
		"completion_%", "completion %", "overall % complete", "pct_complete_normalized",
	}},
	{FieldStage, []string{
		"stage", "lifecycle", "lifecycle_stage", "delivery_stage", "phase", "wave stage",
	}},
	{FieldOwner, []string{
		"owner", "project_owner", "project owner", "manager", "project_manager",
		"project manager", "pm", "responsible", "lead", "it project manager",
		"initiative owner", "accountable workstream",
	}},
	{FieldStrategic, []string{
		"strategic_alignment", "strategic alignment", "strategic goal", "strategy",
		"strategic_goal", "priority", "prioritization score",
	}},
	{FieldBenefits, []string{
		"benefit", "benefits", "net recurring benefits", "one-time benefits",
		"5 yr rev impact", "5 yr cost savings", "benefit quantification",
	}},
	{FieldValueLever, []string{
		"value_lever", "value lever", "value_driver", "value driver",
		"outcome", "business outcome",
	}},
	{FieldApprovalDate, []string{
		"approval_date", "approval date", "approved_date", "approved date", "start_approval",
	}},
	{FieldInterdeps, []string{
		"interdependencies", "dependencies", "project interdependencies",
	}},
	{FieldComplexity, []string{
		"complexity", "it implementation complexity", "implementation complexity",
	}},
	{FieldTask, []string{"task", "task_name", "task name", "activity", "work_item"}},
	{FieldResource, []string{"resource", "user", "assigned_to", "assigned to", "team_member"}},
}

// dateFields lists fields interpreted as dates, in the order the actuals
// aggregator probes them for work-span computation.
var dateFields = []Field{
	FieldSnapshotDate, FieldStartDate, FieldFinishDate,
	FieldForecastFinish, FieldApprovalDate,
}

// DateFields returns the date-typed fields in probe order.
func DateFields() []Field {
	return append([]Field(nil), dateFields...)
}
