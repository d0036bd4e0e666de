// /internal/storage/storage.go
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/keshon/datastore"
)

const (
	guildKeyPrefix  = "guild:"
	toggleKeyPrefix = "toggle:"
)

type Storage struct {
	ds *datastore.DataStore
}

// GuildRecord is everything persisted per guild.
type GuildRecord struct {
	Botbans        []string          `json:"botbans"`
	Invokers       []string          `json:"invokers"`
	DefaultRemoved bool              `json:"default_removed"`
	Locale         string            `json:"locale"`
	ChannelLocales map[string]string `json:"channel_locales"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

func (s *Storage) getOrCreateGuildRecord(guildID string) (*GuildRecord, error) {
	data, exists := s.ds.Get(guildKeyPrefix + guildID)
	if !exists {
		newRecord := &GuildRecord{
			ChannelLocales: map[string]string{},
		}
		s.ds.Add(guildKeyPrefix+guildID, newRecord)
		return newRecord, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	var record GuildRecord
	err = json.Unmarshal(jsonData, &record)
	if err != nil {
		return nil, fmt.Errorf("error unmarshalling to *GuildRecord: %w", err)
	}

	if record.ChannelLocales == nil {
		record.ChannelLocales = map[string]string{}
	}

	return &record, nil
}

func (s *Storage) saveGuildRecord(guildID string, record *GuildRecord) {
	s.ds.Add(guildKeyPrefix+guildID, record)
}

// DisabledScopes returns every guild the command is disabled in.
func (s *Storage) DisabledScopes(qualifiedID string) ([]string, error) {
	data, exists := s.ds.Get(toggleKeyPrefix + qualifiedID)
	if !exists {
		return nil, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	var scopes []string
	if err := json.Unmarshal(jsonData, &scopes); err != nil {
		return nil, fmt.Errorf("error unmarshalling scopes: %w", err)
	}
	return scopes, nil
}

// AddToggle records the command as disabled in the scope.
func (s *Storage) AddToggle(scope, qualifiedID string) error {
	scopes, err := s.DisabledScopes(qualifiedID)
	if err != nil {
		return err
	}
	for _, existing := range scopes {
		if existing == scope {
			return nil
		}
	}
	s.ds.Add(toggleKeyPrefix+qualifiedID, append(scopes, scope))
	return nil
}

// RemoveToggle clears the disablement of the command in the scope.
func (s *Storage) RemoveToggle(scope, qualifiedID string) error {
	scopes, err := s.DisabledScopes(qualifiedID)
	if err != nil {
		return err
	}
	kept := scopes[:0]
	for _, existing := range scopes {
		if existing != scope {
			kept = append(kept, existing)
		}
	}
	if len(kept) == 0 {
		s.ds.Delete(toggleKeyPrefix + qualifiedID)
		return nil
	}
	s.ds.Add(toggleKeyPrefix+qualifiedID, kept)
	return nil
}

// Botbans returns the user IDs the bot ignores in the guild.
func (s *Storage) Botbans(guildID string) ([]string, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.Botbans, nil
}

func (s *Storage) AddBotban(guildID, userID string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	for _, existing := range record.Botbans {
		if existing == userID {
			return nil
		}
	}
	record.Botbans = append(record.Botbans, userID)
	s.saveGuildRecord(guildID, record)
	return nil
}

func (s *Storage) RemoveBotban(guildID, userID string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	kept := record.Botbans[:0]
	for _, existing := range record.Botbans {
		if existing != userID {
			kept = append(kept, existing)
		}
	}
	record.Botbans = kept
	s.saveGuildRecord(guildID, record)
	return nil
}

// Invokers returns the guild's extra command prefixes and whether the
// built-in default prefix was removed.
func (s *Storage) Invokers(guildID string) ([]string, bool, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, false, err
	}
	return record.Invokers, record.DefaultRemoved, nil
}

func (s *Storage) AddInvoker(guildID, invoker string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	for _, existing := range record.Invokers {
		if existing == invoker {
			return nil
		}
	}
	record.Invokers = append(record.Invokers, invoker)
	s.saveGuildRecord(guildID, record)
	return nil
}

// RemoveInvoker drops a custom prefix. Removing the default prefix sets a
// marker instead, so the guild can restore it later by adding it back.
func (s *Storage) RemoveInvoker(guildID, invoker, defaultInvoker string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	if invoker == defaultInvoker {
		record.DefaultRemoved = true
		s.saveGuildRecord(guildID, record)
		return nil
	}
	kept := record.Invokers[:0]
	for _, existing := range record.Invokers {
		if existing != invoker {
			kept = append(kept, existing)
		}
	}
	record.Invokers = kept
	s.saveGuildRecord(guildID, record)
	return nil
}

// RestoreDefaultInvoker clears the default-removed marker.
func (s *Storage) RestoreDefaultInvoker(guildID string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	record.DefaultRemoved = false
	s.saveGuildRecord(guildID, record)
	return nil
}

func (s *Storage) GuildLocale(guildID string) (string, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return "", err
	}
	return record.Locale, nil
}

func (s *Storage) SetGuildLocale(guildID, locale string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	record.Locale = locale
	s.saveGuildRecord(guildID, record)
	return nil
}

func (s *Storage) ChannelLocales(guildID string) (map[string]string, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.ChannelLocales, nil
}

// SetChannelLocale sets a per-channel locale override. An empty locale
// clears the override.
func (s *Storage) SetChannelLocale(guildID, channelID, locale string) error {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	if locale == "" {
		delete(record.ChannelLocales, channelID)
	} else {
		record.ChannelLocales[channelID] = locale
	}
	s.saveGuildRecord(guildID, record)
	return nil
}
