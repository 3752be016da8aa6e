package pubsub

import (
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/timshannon/badgerhold/v4"
)

const storeDir = "pubsub"

type store struct {
	db *badgerhold.Store
}

// newStore opens the subscriptions store under datadir, or an in-memory one
// if datadir is empty.
func newStore(datadir string) (*store, error) {
	var opts badger.Options
	if datadir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(filepath.Join(datadir, storeDir)).
			WithCompression(options.ZSTD)
	}
	opts = opts.WithLogger(nil)

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder: badgerhold.DefaultEncode,
		Decoder: badgerhold.DefaultDecode,
		Options: opts,
	})
	if err != nil {
		return nil, err
	}
	return &store{db}, nil
}

func (s *store) add(sub Subscription) error {
	return s.db.Upsert(sub.ID, sub)
}

func (s *store) get(id string) (*Subscription, error) {
	var sub Subscription
	if err := s.db.Get(id, &sub); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (s *store) remove(id string) error {
	return s.db.Delete(id, Subscription{})
}

func (s *store) findByTopic(topic string) (subscriptions, error) {
	var subs subscriptions
	query := badgerhold.Where("Event").Eq(topic).SortBy("ID")
	if err := s.db.Find(&subs, query); err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *store) all() (subscriptions, error) {
	var subs subscriptions
	if err := s.db.Find(&subs, (&badgerhold.Query{}).SortBy("ID")); err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *store) close() error {
	return s.db.Close()
}
