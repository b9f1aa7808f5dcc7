package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/vocab-manager/internal/logger"
	"github.com/tphakala/vocab-manager/internal/model"
	"github.com/tphakala/vocab-manager/internal/observability/metrics"
)

// ListLanguages returns all languages ordered by endonym.
func (ds *DataStore) ListLanguages(ctx context.Context) (out []model.Language, err error) {
	defer func(start time.Time) { ds.observe(metrics.OpListLanguages, start, err) }(time.Now())

	var rows []LanguageRow
	if err = ds.DB.WithContext(ctx).Order("endonym, language_id").Find(&rows).Error; err != nil {
		return nil, dbError(err, metrics.OpListLanguages)
	}
	out = make([]model.Language, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

// GetLanguage returns language id.
func (ds *DataStore) GetLanguage(ctx context.Context, id int64) (model.Language, error) {
	row, err := ds.findLanguage(ds.DB.WithContext(ctx), id)
	if err != nil {
		return model.Language{}, err
	}
	return row.toModel(), nil
}

// CreateLanguage inserts a language and returns it with its new id.
func (ds *DataStore) CreateLanguage(ctx context.Context, fields model.LanguageFields) (out model.Language, err error) {
	defer func(start time.Time) { ds.observe(metrics.OpCreateLanguage, start, err) }(time.Now())

	var row LanguageRow
	row.apply(fields)
	if err = ds.DB.WithContext(ctx).Create(&row).Error; err != nil {
		return model.Language{}, dbError(err, metrics.OpCreateLanguage, "iso", fields.ISO)
	}
	ds.log.Info("language created", logger.Int64("language_id", row.ID), logger.String("iso", row.ISO))
	ds.updateRowCounts(ctx)
	return row.toModel(), nil
}

// UpdateLanguage overwrites every editable field of language id.
func (ds *DataStore) UpdateLanguage(ctx context.Context, id int64, fields model.LanguageFields) (out model.Language, err error) {
	defer func(start time.Time) { ds.observe(metrics.OpUpdateLanguage, start, err) }(time.Now())

	err = ds.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := ds.findLanguage(tx, id)
		if err != nil {
			return err
		}
		row.apply(fields)
		if err := tx.Save(&row).Error; err != nil {
			return dbError(err, metrics.OpUpdateLanguage, "language_id", id)
		}
		out = row.toModel()
		return nil
	})
	if err != nil {
		return model.Language{}, err
	}
	ds.log.Info("language updated", logger.Int64("language_id", id))
	return out, nil
}

// DeleteLanguage removes language id together with its vocabulary in one
// transaction.
func (ds *DataStore) DeleteLanguage(ctx context.Context, id int64) (removed int64, err error) {
	defer func(start time.Time) { ds.observe(metrics.OpDeleteLanguage, start, err) }(time.Now())

	err = ds.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ds.findLanguage(tx, id); err != nil {
			return err
		}
		res := tx.Where("language_id = ?", id).Delete(&VocabularyRow{})
		if res.Error != nil {
			return dbError(res.Error, metrics.OpDeleteLanguage, "language_id", id)
		}
		removed = res.RowsAffected
		if err := tx.Delete(&LanguageRow{}, id).Error; err != nil {
			return dbError(err, metrics.OpDeleteLanguage, "language_id", id)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	ds.log.Info("language deleted",
		logger.Int64("language_id", id),
		logger.Int64("entries_removed", removed))
	ds.updateRowCounts(ctx)
	return removed, nil
}

// ListEntries returns the vocabulary of languageID ordered by lemma.
func (ds *DataStore) ListEntries(ctx context.Context, languageID int64) (out []model.VocabularyEntry, err error) {
	defer func(start time.Time) { ds.observe(metrics.OpListEntries, start, err) }(time.Now())

	var rows []VocabularyRow
	err = ds.DB.WithContext(ctx).
		Where("language_id = ?", languageID).
		Order("lemma, word_id").
		Find(&rows).Error
	if err != nil {
		return nil, dbError(err, metrics.OpListEntries, "language_id", languageID)
	}
	out = make([]model.VocabularyEntry, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

// CreateEntry inserts an entry under languageID, which must exist.
func (ds *DataStore) CreateEntry(ctx context.Context, languageID int64, fields model.EntryFields) (out model.VocabularyEntry, err error) {
	defer func(start time.Time) { ds.observe(metrics.OpCreateEntry, start, err) }(time.Now())

	err = ds.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ds.findLanguage(tx, languageID); err != nil {
			return err
		}
		row := VocabularyRow{LanguageID: languageID}
		row.apply(fields)
		if err := tx.Create(&row).Error; err != nil {
			return dbError(err, metrics.OpCreateEntry, "language_id", languageID)
		}
		out = row.toModel()
		return nil
	})
	if err != nil {
		return model.VocabularyEntry{}, err
	}
	ds.log.Info("vocabulary entry created",
		logger.Int64("language_id", languageID),
		logger.Int64("word_id", out.ID))
	ds.updateRowCounts(ctx)
	return out, nil
}

// UpdateEntry overwrites every editable field of entry wordID. The owning
// language never changes.
func (ds *DataStore) UpdateEntry(ctx context.Context, languageID, wordID int64, fields model.EntryFields) (out model.VocabularyEntry, err error) {
	defer func(start time.Time) { ds.observe(metrics.OpUpdateEntry, start, err) }(time.Now())

	err = ds.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := ds.findEntry(tx, languageID, wordID)
		if err != nil {
			return err
		}
		row.apply(fields)
		if err := tx.Save(&row).Error; err != nil {
			return dbError(err, metrics.OpUpdateEntry, "word_id", wordID)
		}
		out = row.toModel()
		return nil
	})
	if err != nil {
		return model.VocabularyEntry{}, err
	}
	ds.log.Info("vocabulary entry updated", logger.Int64("word_id", wordID))
	return out, nil
}

// DeleteEntry removes entry wordID of languageID.
func (ds *DataStore) DeleteEntry(ctx context.Context, languageID, wordID int64) (err error) {
	defer func(start time.Time) { ds.observe(metrics.OpDeleteEntry, start, err) }(time.Now())

	res := ds.DB.WithContext(ctx).
		Where("language_id = ? AND word_id = ?", languageID, wordID).
		Delete(&VocabularyRow{})
	if res.Error != nil {
		return dbError(res.Error, metrics.OpDeleteEntry, "word_id", wordID)
	}
	if res.RowsAffected == 0 {
		return notFound("vocabulary entry", wordID)
	}
	ds.log.Info("vocabulary entry deleted", logger.Int64("word_id", wordID))
	ds.updateRowCounts(ctx)
	return nil
}

func (ds *DataStore) findLanguage(tx *gorm.DB, id int64) (LanguageRow, error) {
	var row LanguageRow
	res := tx.Limit(1).Find(&row, id)
	if res.Error != nil {
		return row, dbError(res.Error, "find_language", "language_id", id)
	}
	if res.RowsAffected == 0 {
		return row, notFound("language", id)
	}
	return row, nil
}

func (ds *DataStore) findEntry(tx *gorm.DB, languageID, wordID int64) (VocabularyRow, error) {
	var row VocabularyRow
	res := tx.Where("language_id = ? AND word_id = ?", languageID, wordID).Limit(1).Find(&row)
	if res.Error != nil {
		return row, dbError(res.Error, "find_entry", "word_id", wordID)
	}
	if res.RowsAffected == 0 {
		return row, notFound("vocabulary entry", wordID)
	}
	return row, nil
}
