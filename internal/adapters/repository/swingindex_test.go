package repository

import (
	"context"
	"fmt"
	"math"
	"sort"
	"testing"

	"github.com/okian/pbpwpa/internal/domain/model"
	"github.com/okian/pbpwpa/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSwingIndex(t *testing.T) {
	Convey("Given a swing index with many plays", t, func() {
		var x swingIndex
		var all []types.Swing
		for g := 0; g < 20; g++ {
			for i := 0; i < 50; i++ {
				s := types.Swing{GameID: fmt.Sprintf("g%02d", g), Index: i, WPA: float64((g*37+i*11)%41 - 20)}
				x.add(s)
				all = append(all, s)
			}
		}
		sort.Slice(all, func(i, j int) bool {
			return less(math.Abs(all[i].WPA), &all[i], math.Abs(all[j].WPA), &all[j])
		})

		Convey("Then in-order traversal matches a full sort", func() {
			top := x.top(100)
			So(len(top), ShouldEqual, 100)
			for i := range top {
				So(top[i].GameID, ShouldEqual, all[i].GameID)
				So(top[i].Index, ShouldEqual, all[i].Index)
				So(top[i].Rank, ShouldEqual, i+1)
			}
		})

		Convey("Then the tree keeps its size", func() {
			So(x.size, ShouldEqual, 1000)
			So(len(x.top(5000)), ShouldEqual, 1000)
		})

		Convey("When the plays of one game are removed", func() {
			for i := range all {
				if all[i].GameID == "g03" {
					x.remove(&all[i])
				}
			}

			Convey("Then they no longer rank", func() {
				So(x.size, ShouldEqual, 950)
				for _, s := range x.top(950) {
					So(s.GameID, ShouldNotEqual, "g03")
				}
			})
		})

		Convey("When a NaN swing is added", func() {
			x.add(types.Swing{GameID: "nan", WPA: math.NaN()})

			Convey("Then it is ignored", func() {
				So(x.size, ShouldEqual, 1000)
			})
		})
	})

	Convey("Given a store where a game is saved twice", t, func() {
		s := NewMemoryStore(WithMetrics(false))
		ctx := context.Background()
		first, second := 30.0, 5.0
		So(s.Save(ctx, &model.GameResult{GameID: "g", Table: []model.TablePlay{{Index: 0, WPA: &first}}}), ShouldBeNil)
		So(s.Save(ctx, &model.GameResult{GameID: "g", Table: []model.TablePlay{{Index: 0, WPA: &second}}}), ShouldBeNil)

		Convey("Then only the latest swings rank", func() {
			top, err := s.TopSwings(ctx, 10)
			So(err, ShouldBeNil)
			So(len(top), ShouldEqual, 1)
			So(top[0].WPA, ShouldEqual, 5.0)
		})
	})
}
