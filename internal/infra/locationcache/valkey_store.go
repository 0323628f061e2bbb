package locationcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	"github.com/StuFraser/aqua-ripple/internal/domain/imagery"
	"github.com/StuFraser/aqua-ripple/internal/domain/location"
)

// ValkeyStore keeps water bodies in a geo set with one JSON entry per member.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyStore constructs a cache backed by Valkey geo commands.
func NewValkeyStore(client valkey.Client, prefix string, ttl time.Duration) *ValkeyStore {
	if prefix == "" {
		prefix = "waterbody"
	}
	return &ValkeyStore{client: client, prefix: prefix, ttl: ttl}
}

// nearestCandidates bounds how many geo members are checked when the closest entries have expired.
const nearestCandidates = 5

// Nearest implements location.Cache.
func (s *ValkeyStore) Nearest(ctx context.Context, c imagery.Coordinate, radiusMeters float64) (location.WaterBody, bool, error) {
	if radiusMeters <= 0 {
		return location.WaterBody{}, false, nil
	}
	cmd := s.client.B().Geosearch().Key(s.geoKey()).
		Fromlonlat(c.Longitude, c.Latitude).
		Byradius(radiusMeters).M().
		Asc().Count(nearestCandidates).
		Build()
	members, err := s.client.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return location.WaterBody{}, false, nil
		}
		return location.WaterBody{}, false, err
	}

	load := func(member string) (string, bool, error) {
		payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.entryKey(member)).Build()).ToString()
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return payload, err == nil, err
	}
	drop := func(member string) {
		_ = s.client.Do(ctx, s.client.B().Zrem().Key(s.geoKey()).Member(member).Build()).Error()
	}
	return firstLive(members, load, drop)
}

// firstLive decodes the first member, nearest first, whose entry still exists.
// Members whose entries have expired are handed to drop.
func firstLive(members []string, load func(member string) (string, bool, error), drop func(member string)) (location.WaterBody, bool, error) {
	for _, member := range members {
		payload, ok, err := load(member)
		if err != nil {
			return location.WaterBody{}, false, err
		}
		if !ok {
			drop(member)
			continue
		}
		var body location.WaterBody
		if err := json.Unmarshal([]byte(payload), &body); err != nil {
			return location.WaterBody{}, false, err
		}
		return body, true, nil
	}
	return location.WaterBody{}, false, nil
}

// Save implements location.Cache.
func (s *ValkeyStore) Save(ctx context.Context, body location.WaterBody) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	member := uuid.NewString()

	builder := s.client.B().Set().Key(s.entryKey(member)).Value(string(payload))
	var set valkey.Completed
	if s.ttl > 0 {
		ttl := s.ttl
		if ttl < time.Second {
			ttl = time.Second
		}
		set = builder.Ex(ttl).Build()
	} else {
		set = builder.Build()
	}
	if err := s.client.Do(ctx, set).Error(); err != nil {
		return err
	}

	add := s.client.B().Geoadd().Key(s.geoKey()).
		LongitudeLatitudeMember().
		LongitudeLatitudeMember(body.Longitude, body.Latitude, member).
		Build()
	return s.client.Do(ctx, add).Error()
}

func (s *ValkeyStore) geoKey() string {
	return s.prefix + ":geo"
}

func (s *ValkeyStore) entryKey(member string) string {
	return s.prefix + ":entry:" + member
}

var _ location.Cache = (*ValkeyStore)(nil)
