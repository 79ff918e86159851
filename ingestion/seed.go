package ingestion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fabfab/study-agent/logger"
	"github.com/fabfab/study-agent/models"
	"github.com/fabfab/study-agent/store"
)

// SampleSentinel names the record that marks the samples as seeded.
const SampleSentinel = "sample-documents"

type SentinelStore interface {
	ClaimSentinel(ctx context.Context, name string) (bool, error)
}

// Seed stores the sample NCERT Physics chapters that are not stored yet and
// then claims SampleSentinel. Sample ids derive from their names, so a run
// that failed halfway is finished by the next one. It returns the documents
// it inserted.
func Seed(ctx context.Context, sentinels SentinelStore, docs DocumentStore, log *logger.Logger) ([]models.Document, error) {
	log = logger.OrNop(log)

	now := time.Now().UTC()
	out := make([]models.Document, 0, len(sampleDocuments))
	for i, sample := range sampleDocuments {
		id := SampleID(sample.OriginalName)
		exists, err := documentExists(ctx, docs, id)
		if err != nil {
			return out, fmt.Errorf("look up sample %q: %w", sample.OriginalName, err)
		}
		if exists {
			continue
		}

		doc := sample
		doc.ID = id
		doc.IsSample = true
		// Keep listing order stable: later chapters look newer.
		doc.UploadDate = now.Add(time.Duration(i) * time.Millisecond)
		doc.Chunks = append([]models.Chunk(nil), sample.Chunks...)
		if err := docs.CreateDocument(ctx, &doc); err != nil {
			// Another process may have inserted it first.
			if exists, lookupErr := documentExists(ctx, docs, id); lookupErr == nil && exists {
				continue
			}
			return out, fmt.Errorf("insert sample %q: %w", doc.OriginalName, err)
		}
		out = append(out, doc)
	}

	claimed, err := sentinels.ClaimSentinel(ctx, SampleSentinel)
	if err != nil {
		return out, fmt.Errorf("claim seed sentinel: %w", err)
	}
	if !claimed && len(out) == 0 {
		log.Info("sample documents already seeded")
		return out, nil
	}

	log.Info("sample documents seeded", "count", len(out))
	return out, nil
}

// SampleID is the stable document id of the sample named name.
func SampleID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("study-agent/samples/"+name)).String()
}

func documentExists(ctx context.Context, docs DocumentStore, id string) (bool, error) {
	_, err := docs.GetDocument(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

var sampleDocuments = []models.Document{
	{
		OriginalName: "NCERT Physics Class XI - Chapter 1: Physical World",
		Content: `Chapter 1: Physical World

The Physical World is a fascinating place to explore. Physics is the most fundamental of all sciences which attempts to describe the whole nature in terms of simple fundamental laws.

What is Physics?
Physics is the study of matter, energy and their interactions. It seeks to understand how the universe behaves at a fundamental level.

Scope and Excitement of Physics:
Physics covers a tremendous range of phenomena. From the smallest particles to the largest galaxies, physics helps us understand the natural world.

Fundamental Forces in Nature:
1. Gravitational Force
2. Electromagnetic Force
3. Strong Nuclear Force
4. Weak Nuclear Force

Physics, Technology and Society:
Physics has played a crucial role in the development of technology and has significantly impacted society.

Key Concepts:
- Motion and its laws
- Energy and its conservation
- Matter and its properties
- Forces and their effects`,
		Chunks: []models.Chunk{
			{Text: "The Physical World is a fascinating place to explore. Physics is the most fundamental of all sciences which attempts to describe the whole nature in terms of simple fundamental laws.", PageNumber: 1, ChunkIndex: 0},
			{Text: "Physics is the study of matter, energy and their interactions. It seeks to understand how the universe behaves at a fundamental level.", PageNumber: 1, ChunkIndex: 1},
			{Text: "Fundamental Forces in Nature: 1. Gravitational Force 2. Electromagnetic Force 3. Strong Nuclear Force 4. Weak Nuclear Force", PageNumber: 2, ChunkIndex: 2},
		},
	},
	{
		OriginalName: "NCERT Physics Class XI - Chapter 2: Units and Measurements",
		Content: `Chapter 2: Units and Measurements

Measurement is fundamental to all experimental sciences. In this chapter, we will learn about the importance of measurements in physics.

The International System of Units (SI):
The SI system is based on seven fundamental units:
1. Length (metre, m)
2. Mass (kilogram, kg)
3. Time (second, s)
4. Electric current (ampere, A)
5. Temperature (kelvin, K)
6. Amount of substance (mole, mol)
7. Luminous intensity (candela, cd)

Measurement of Length:
- For very small lengths: Vernier callipers, screw gauge
- For moderate lengths: Metre scale
- For large distances: Triangulation method

Measurement of Mass:
- Common balance for moderate masses
- Physical balance for precise measurements
- Spring balance for approximate measurements

Significant Figures:
Rules for significant figures help in expressing measurements accurately.

Dimensional Analysis:
Every physical quantity can be expressed in terms of fundamental dimensions.`,
		Chunks: []models.Chunk{
			{Text: "Measurement is fundamental to all experimental sciences. In this chapter, we will learn about the importance of measurements in physics.", PageNumber: 1, ChunkIndex: 0},
			{Text: "The SI system is based on seven fundamental units: Length (metre), Mass (kilogram), Time (second), Electric current (ampere), Temperature (kelvin), Amount of substance (mole), Luminous intensity (candela)", PageNumber: 1, ChunkIndex: 1},
			{Text: "Dimensional Analysis: Every physical quantity can be expressed in terms of fundamental dimensions.", PageNumber: 3, ChunkIndex: 2},
		},
	},
	{
		OriginalName: "NCERT Physics Class XI - Chapter 3: Motion in a Straight Line",
		Content: `Chapter 3: Motion in a Straight Line

Motion is one of the most common phenomena in the universe. In this chapter, we study the simplest type of motion - motion in a straight line.

Position and Displacement:
- Position of an object is its location with respect to a chosen reference point
- Displacement is the change in position of an object

Velocity and Speed:
- Speed is the rate of change of distance
- Velocity is the rate of change of displacement
- Average velocity = Total displacement / Total time

Acceleration:
- Acceleration is the rate of change of velocity
- Average acceleration = Change in velocity / Time taken

Equations of Motion:
For uniformly accelerated motion:
1. v = u + at
2. s = ut + (1/2)at²
3. v² = u² + 2as

Where: u = initial velocity, v = final velocity, a = acceleration, t = time, s = displacement`,
		Chunks: []models.Chunk{
			{Text: "Motion is one of the most common phenomena in the universe. In this chapter, we study the simplest type of motion - motion in a straight line.", PageNumber: 1, ChunkIndex: 0},
			{Text: "Position of an object is its location with respect to a chosen reference point. Displacement is the change in position of an object.", PageNumber: 1, ChunkIndex: 1},
			{Text: "Equations of Motion for uniformly accelerated motion: v = u + at, s = ut + (1/2)at², v² = u² + 2as", PageNumber: 3, ChunkIndex: 2},
		},
	},
}
