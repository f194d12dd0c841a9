package config

import (
	"log"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. POKERIA_MIN_RANK_CONF.
const EnvPrefix = "POKERIA"

// ApplyEnv overrides profile fields from the environment. Unparseable values
// are logged and ignored; the result is validated.
func (p Profile) ApplyEnv() Profile {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)

	floats := map[string]*float64{
		"min_rank_conf":        &p.Thresholds.MinRankConf,
		"min_suit_conf":        &p.Thresholds.MinSuitConf,
		"min_card_score":       &p.Thresholds.MinCardScore,
		"board_min_rank_conf":  &p.Thresholds.BoardMinRankConf,
		"board_min_suit_conf":  &p.Thresholds.BoardMinSuitConf,
		"board_min_card_score": &p.Thresholds.BoardMinCardScore,
		"board_suit_margin":    &p.Thresholds.BoardSuitMargin,
		"board_rank_margin":    &p.Thresholds.BoardRankMargin,
		"rank_fast_accept":     &p.Rank.FastAccept,
		"rank_reconcile_below": &p.Rank.ReconcileBelow,
		"rank_ambiguous_below": &p.Rank.AmbiguousBelow,
		"suit_red_ratio_min":   &p.Suit.RedRatioMin,
		"dpi_scale":            &p.DPIScale,
	}
	for key, dst := range floats {
		_ = v.BindEnv(key)
		if !v.IsSet(key) {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(key)), 64)
		if err != nil {
			log.Printf("Ignoring %s_%s: %v", EnvPrefix, strings.ToUpper(key), err)
			continue
		}
		*dst = f
	}

	bools := map[string]*bool{
		"strict":         &p.Strict,
		"board_tolerant": &p.BoardTolerant,
	}
	for key, dst := range bools {
		_ = v.BindEnv(key)
		if !v.IsSet(key) {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			log.Printf("Ignoring %s_%s: %v", EnvPrefix, strings.ToUpper(key), err)
			continue
		}
		*dst = b
	}

	strs := map[string]*string{
		"rank_variant": &p.RankVariant,
		"suit_variant": &p.SuitVariant,
		"ranks_dir":    &p.RanksDir,
		"suits_dir":    &p.SuitsDir,
	}
	for key, dst := range strs {
		_ = v.BindEnv(key)
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	p, err := p.Validate()
	if err != nil {
		log.Printf("Profile corrected: %v", err)
	}
	return p
}
