package playback_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/covplay/internal/coverage"
	"github.com/san-kum/covplay/internal/interp"
	"github.com/san-kum/covplay/internal/playback"
)

type recordingSurface struct {
	grid     coverage.Grid
	setups   int
	cells    map[coverage.Cell]coverage.ColorState
	agent    interp.Point
	label    string
	setupErr error
}

func (s *recordingSurface) Setup(grid coverage.Grid) error {
	if s.setupErr != nil {
		return s.setupErr
	}
	s.grid = grid
	s.setups++
	s.cells = make(map[coverage.Cell]coverage.ColorState)
	for _, c := range grid.Cells() {
		s.cells[c] = coverage.StateFree
	}
	return nil
}

func (s *recordingSurface) SetCell(c coverage.Cell, st coverage.ColorState) { s.cells[c] = st }
func (s *recordingSurface) MoveAgent(p interp.Point)                        { s.agent = p }
func (s *recordingSurface) SetLabel(text string)                            { s.label = text }

func (s *recordingSurface) copyCells() map[coverage.Cell]coverage.ColorState {
	out := make(map[coverage.Cell]coverage.ColorState, len(s.cells))
	for c, st := range s.cells {
		out[c] = st
	}
	return out
}

var _ = Describe("Driver", func() {
	var (
		grid    coverage.Grid
		visited coverage.VisitedPath
		dyn     coverage.MapDynamics
	)

	BeforeEach(func() {
		grid = coverage.Grid{XLen: 2, YLen: 2}
		visited = coverage.VisitedPath{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}}
		dyn = coverage.MapDynamics{
			{{X: 1, Y: 1}: coverage.Occupied},
			{},
			{{X: 0, Y: 0}: coverage.Free},
		}
	})

	Describe("New", func() {
		It("refuses logs of different lengths", func() {
			_, err := playback.New(visited, dyn[:2], grid)
			Expect(err).To(MatchError(coverage.ErrLengthMismatch))
		})

		It("refuses an empty path", func() {
			_, err := playback.New(coverage.VisitedPath{}, coverage.MapDynamics{}, grid)
			Expect(err).To(MatchError(coverage.ErrEmptyPath))
		})

		It("refuses a visited cell outside the grid", func() {
			visited[1] = coverage.Cell{X: 2, Y: 1}
			_, err := playback.New(visited, dyn, grid)
			Expect(err).To(MatchError(coverage.ErrCellOutOfRange))
			Expect(err.Error()).To(ContainSubstring("t=1"))
		})

		It("refuses a reported cell outside the grid", func() {
			dyn[2][coverage.Cell{X: 0, Y: 5}] = coverage.Occupied
			_, err := playback.New(visited, dyn, grid)
			Expect(err).To(MatchError(coverage.ErrCellOutOfRange))
		})

		It("refuses non-positive substeps and frame rates", func() {
			_, err := playback.New(visited, dyn, grid, playback.WithSubsteps(0))
			Expect(err).To(MatchError(coverage.ErrInvalidConfig))

			_, err = playback.New(visited, dyn, grid, playback.WithFrameRate(-1))
			Expect(err).To(MatchError(coverage.ErrInvalidConfig))

			_, err = playback.New(visited, dyn, coverage.Grid{XLen: 0, YLen: 2})
			Expect(err).To(MatchError(coverage.ErrInvalidConfig))
		})

		It("applies defaults", func() {
			d, err := playback.New(visited, dyn, grid)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Substeps()).To(Equal(interp.DefaultSubsteps))
			Expect(d.FrameRate()).To(Equal(playback.DefaultFrameRate))
			Expect(d.Frames()).To(Equal(30))
			Expect(d.Interval().Milliseconds()).To(Equal(int64(40)))
		})
	})

	Describe("Run", func() {
		var (
			d       *playback.Driver
			surface *recordingSurface
		)

		BeforeEach(func() {
			var err error
			d, err = playback.New(visited, dyn, grid)
			Expect(err).NotTo(HaveOccurred())
			surface = &recordingSurface{}
		})

		It("plays the two-by-two scenario", func() {
			cells := make(map[int]map[coverage.Cell]coverage.ColorState)
			labels := make(map[int]string)
			frames := 0

			err := d.Run(context.Background(), surface, func(st playback.State) error {
				Expect(st.Frame).To(Equal(frames))
				frames++
				cells[st.Frame] = surface.copyCells()
				labels[st.Frame] = surface.label
				return nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(frames).To(Equal(30))
			Expect(surface.setups).To(Equal(1))

			Expect(cells[0][coverage.Cell{X: 1, Y: 1}]).To(Equal(coverage.StateOccupied))
			Expect(cells[10][coverage.Cell{X: 1, Y: 1}]).To(Equal(coverage.StateOccupied))
			Expect(cells[20][coverage.Cell{X: 1, Y: 1}]).To(Equal(coverage.StateCoveredOccupied))
			Expect(cells[20][coverage.Cell{X: 0, Y: 0}]).To(Equal(coverage.StateCoveredFree))
			Expect(cells[29][coverage.Cell{X: 1, Y: 0}]).To(Equal(coverage.StateFree))

			Expect(labels[0]).To(Equal("Time: 0"))
			Expect(labels[9]).To(Equal("Time: 0"))
			Expect(labels[10]).To(Equal("Time: 1"))
			Expect(labels[29]).To(Equal("Time: 2"))
		})

		It("places the agent on cell centres at timestep boundaries", func() {
			positions := make(map[int]interp.Point)
			err := d.Run(context.Background(), surface, func(st playback.State) error {
				positions[st.Frame] = st.Render
				return nil
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(positions[0]).To(Equal(interp.Point{X: 0.5, Y: 1.5}))
			Expect(positions[10]).To(Equal(interp.Point{X: 0.5, Y: 0.5}))
			Expect(positions[20]).To(Equal(interp.Point{X: 1.5, Y: 0.5}))
			Expect(positions[29]).To(Equal(interp.Point{X: 1.5, Y: 0.5}))
			Expect(positions[5].X).To(BeNumerically("~", 0.5, 1e-9))
			Expect(positions[5].Y).To(BeNumerically("~", 1.0, 1e-9))
			Expect(surface.agent).To(Equal(positions[29]))
		})

		It("stops when the context is canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			err := d.Run(ctx, surface, func(st playback.State) error {
				if st.Frame == 4 {
					cancel()
				}
				return nil
			})
			Expect(err).To(MatchError(coverage.ErrCanceled))
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())

			var pe *coverage.PlaybackError
			Expect(errors.As(err, &pe)).To(BeTrue())
			Expect(pe.Frame).To(Equal(5))
		})

		It("aborts when onFrame fails", func() {
			boom := errors.New("disk full")
			calls := 0
			err := d.Run(context.Background(), surface, func(st playback.State) error {
				calls++
				if st.Frame == 12 {
					return boom
				}
				return nil
			})
			Expect(err).To(MatchError(boom))
			Expect(calls).To(Equal(13))

			var pe *coverage.PlaybackError
			Expect(errors.As(err, &pe)).To(BeTrue())
			Expect(pe.Timestep).To(Equal(1))
		})

		It("returns surface setup errors", func() {
			surface.setupErr = errors.New("no terminal")
			err := d.Run(context.Background(), surface, nil)
			Expect(err).To(MatchError("no terminal"))
		})

		It("accepts a nil onFrame", func() {
			Expect(d.Run(context.Background(), surface, nil)).To(Succeed())
			Expect(d.State().Frame).To(Equal(29))
			Expect(d.CoveredCount()).To(Equal(3))
		})
	})

	Describe("Seek", func() {
		It("matches sequential playback at every frame", func() {
			played, err := playback.New(visited, dyn, grid)
			Expect(err).NotTo(HaveOccurred())
			seq := &recordingSurface{}
			Expect(played.Attach(seq)).To(Succeed())

			seeker, err := playback.New(visited, dyn, grid)
			Expect(err).NotTo(HaveOccurred())
			jump := &recordingSurface{}
			Expect(seeker.Attach(jump)).To(Succeed())

			// Visit frames out of order on the seeker, in order on the player.
			order := []int{25, 3, 17, 29, 0, 14, 21, 9}
			want := make(map[int]map[coverage.Cell]coverage.ColorState)
			for f := 0; f < played.Frames(); f++ {
				_, err := played.Step(f)
				Expect(err).NotTo(HaveOccurred())
				want[f] = seq.copyCells()
			}
			for _, f := range order {
				st, err := seeker.Seek(f)
				Expect(err).NotTo(HaveOccurred())
				Expect(st.Frame).To(Equal(f))
				Expect(jump.copyCells()).To(Equal(want[f]), "frame %d", f)
				Expect(jump.label).To(Equal(playback.Label(f / 10)))
			}
		})

		It("rejects frames outside the run", func() {
			d, err := playback.New(visited, dyn, grid)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Attach(&recordingSurface{})).To(Succeed())

			_, err = d.Seek(30)
			Expect(err).To(MatchError(coverage.ErrFrameOutOfRange))
			_, err = d.Seek(-1)
			Expect(err).To(MatchError(coverage.ErrFrameOutOfRange))
		})

		It("requires an attached surface", func() {
			d, err := playback.New(visited, dyn, grid)
			Expect(err).NotTo(HaveOccurred())
			_, err = d.Step(0)
			Expect(err).To(MatchError(playback.ErrNoSurface))
			_, err = d.Seek(0)
			Expect(errors.Is(err, playback.ErrNoSurface)).To(BeTrue())
		})
	})
})
