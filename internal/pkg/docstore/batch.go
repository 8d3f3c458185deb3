package docstore

import "context"

type batch struct {
	muts   []mutation
	commit func(ctx context.Context, muts []mutation) error
}

func (b *batch) Set(path string, fields map[string]any, merge bool) Batch {
	kind := mutSet
	if merge {
		kind = mutMerge
	}
	b.muts = append(b.muts, mutation{kind: kind, path: path, fields: canonicalFields(fields)})
	return b
}

func (b *batch) Update(path string, fields map[string]any) Batch {
	b.muts = append(b.muts, mutation{kind: mutUpdate, path: path, fields: canonicalFields(fields)})
	return b
}

func (b *batch) Delete(path string) Batch {
	b.muts = append(b.muts, mutation{kind: mutDelete, path: path})
	return b
}

// Commit applies every queued write or none of them.
func (b *batch) Commit(ctx context.Context) error {
	if len(b.muts) == 0 {
		return nil
	}
	for _, m := range b.muts {
		if err := m.validate(); err != nil {
			return err
		}
	}
	return b.commit(ctx, b.muts)
}
