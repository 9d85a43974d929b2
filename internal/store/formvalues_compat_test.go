package store

import "github.com/farmhand-data/scout.report/internal/form"

// FormValues is the persistence collaborator of the form controller.
var _ form.Store = (*FormValues)(nil)
