package domain

const (
	CollectionEvaluation = "evaluations"
)
